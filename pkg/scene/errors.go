package scene

import "errors"

var (
	ErrNotFound       = errors.New("node not found")
	ErrDuplicateName  = errors.New("duplicate node name")
	ErrHasParent      = errors.New("node already has a parent")
	ErrCycle          = errors.New("node would become its own ancestor")
	ErrNotGroup       = errors.New("node is not a group")
	ErrNotCamera      = errors.New("node is not a camera")
	ErrNotLight       = errors.New("node is not a light")
	ErrNotDraw        = errors.New("node is not a draw node")
	ErrNotChild       = errors.New("node is not a child of the group")
	ErrRootNode       = errors.New("root node cannot be modified this way")
	ErrBadCamera      = errors.New("invalid camera parameters")
	ErrDuplicateGroup = errors.New("duplicate draw group name")
	ErrNoDrawGroup    = errors.New("draw group not found")
	ErrDefaultGroup   = errors.New("default draw group cannot be destroyed")
	ErrNilDrawable    = errors.New("nil drawable")
)
