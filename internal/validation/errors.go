package validation

import "sort"

// FieldErrorMap maps a field name to the single message displayed next to it.
type FieldErrorMap map[string]string

// ToFieldErrorMap derives the display map from a failure. When a field has
// several violations the first one in the failure wins.
func ToFieldErrorMap(failure Failure) FieldErrorMap {
	errs := make(FieldErrorMap, len(failure))
	for _, ve := range failure {
		if _, exists := errs[ve.Field]; !exists {
			errs[ve.Field] = ve.Message
		}
	}
	return errs
}

func (m FieldErrorMap) Get(field string) string {
	return m[field]
}

func (m FieldErrorMap) Has(field string) bool {
	_, ok := m[field]
	return ok
}

// Fields returns the field names in sorted order.
func (m FieldErrorMap) Fields() []string {
	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}
