package tagger

// Action is the outcome of the write-policy decision for one field.
type Action int

const (
	// ActionWrite writes the discovered value into an empty slot.
	ActionWrite Action = iota
	// ActionKeep leaves the existing value untouched.
	ActionKeep
	// ActionOverwrite replaces an existing value.
	ActionOverwrite
)

// Decide applies the field write policy:
//
//	existing present | update flag | force flag | action
//	no               | any         | any        | write
//	yes              | off         | any        | keep
//	yes              | on          | off        | keep
//	yes              | on          | on         | overwrite
//
// It is the single authority for overwrite decisions; callers must not add
// conditionals around it.
func Decide(existingPresent, updateFlag, force bool) Action {
	if !existingPresent {
		return ActionWrite
	}
	if updateFlag && force {
		return ActionOverwrite
	}
	return ActionKeep
}
