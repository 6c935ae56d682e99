package service

type resourceKind string

const (
	resourceUser resourceKind = "user"
	resourceTask resourceKind = "task"
)

// allowedUpdates enumerates the mutable fields per resource kind. Partial
// updates may only touch fields listed here.
var allowedUpdates = map[resourceKind]map[string]struct{}{
	resourceUser: {
		"name":     {},
		"email":    {},
		"password": {},
		"age":      {},
	},
	resourceTask: {
		"description": {},
		"completed":   {},
	},
}

// authorizeUpdate reports whether every requested field is within the
// whitelist for the given kind. A single unknown field rejects the whole
// update; callers must not apply anything on rejection.
func authorizeUpdate(kind resourceKind, fields []string) bool {
	allowed := allowedUpdates[kind]
	for _, field := range fields {
		if _, ok := allowed[field]; !ok {
			return false
		}
	}
	return true
}
