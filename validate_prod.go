//go:build !debug_armory

package armory

// DebugValidate will call Validate on the provided object and panics if any
// errors are returned. This method no-ops unless the debug_armory build tag
// is present
func DebugValidate(validatable Validatable) {
}
