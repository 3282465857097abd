package domain

// Lifecycle replaces hard deletes: deactivated entities stay in the store
// but are ignored by planning.
type Lifecycle string

const (
	LifecycleActive      Lifecycle = "active"
	LifecycleDeactivated Lifecycle = "deactivated"
)

// LifecycleFromFlag maps the `is_active` column onto a Lifecycle.
func LifecycleFromFlag(active bool) Lifecycle {
	if active {
		return LifecycleActive
	}
	return LifecycleDeactivated
}

func (l Lifecycle) IsActive() bool {
	return l == LifecycleActive
}

// Flag is the inverse of LifecycleFromFlag.
func (l Lifecycle) Flag() bool {
	return l.IsActive()
}
