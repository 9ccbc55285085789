package persistence

// SchemaCapabilities describes which optional schema components the connected store
// provides. It is resolved once at startup.
type SchemaCapabilities struct {
	// AtomicMutation is true when the store exposes the single-statement mutation primitive
	AtomicMutation bool
	// Streaks is true when the completion and streak tables exist
	Streaks bool
	// Achievements is true when the unlocked achievement table exists
	Achievements bool
}

// FullCapabilities reports every component as provisioned
func FullCapabilities() SchemaCapabilities {
	return SchemaCapabilities{AtomicMutation: true, Streaks: true, Achievements: true}
}
