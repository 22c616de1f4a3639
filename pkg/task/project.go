package task

import "errors"

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrDefaultProject  = errors.New("the default project cannot be deleted")
	ErrProjectCycle    = errors.New("project cannot be nested under its own descendant")
)

// Project groups tasks. Projects nest through ParentID and render in
// DisplayOrder; exactly one project is the default, which absorbs the tasks
// of any project that gets deleted.
type Project struct {
	ID           string
	Name         string
	ParentID     string
	DisplayOrder int
	IsCollapsed  bool
	IsDefault    bool
}
