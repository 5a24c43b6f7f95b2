package models

// TaskStatus represents the inline lifecycle state declared by a task document.
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusActive    TaskStatus = "active"
	StatusBlocked   TaskStatus = "blocked"
	StatusCompleted TaskStatus = "completed"
)

// TaskFolder names the tasks/ subdirectory a task document was read from.
// The folder is a second status signal, independent of TaskStatus.
type TaskFolder string

const (
	FolderActive    TaskFolder = "active"
	FolderCompleted TaskFolder = "completed"
	FolderBlocked   TaskFolder = "blocked"
)

// AllTaskFolders returns the task folders in scan order.
func AllTaskFolders() []TaskFolder {
	return []TaskFolder{FolderActive, FolderCompleted, FolderBlocked}
}

// Task is a unit of work parsed from a single markdown document under tasks/.
type Task struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	FeatureID          string     `json:"featureId,omitempty"`
	Type               string     `json:"type,omitempty"`
	Priority           string     `json:"priority,omitempty"`
	Status             TaskStatus `json:"status"`
	EstimatedEffort    string     `json:"estimatedEffort,omitempty"`
	Description        string     `json:"description,omitempty"`
	AcceptanceCriteria []string   `json:"acceptanceCriteria"`
	Dependencies       []string   `json:"dependencies"`
	SourcePath         string     `json:"sourcePath"`
}

// TaskLists partitions parsed tasks by the folder they were found in.
type TaskLists struct {
	Active    []Task `json:"active"`
	Completed []Task `json:"completed"`
	Blocked   []Task `json:"blocked"`
}

// Total returns the number of tasks across all folders.
func (l TaskLists) Total() int {
	return len(l.Active) + len(l.Completed) + len(l.Blocked)
}

// InFolder returns the task list for the given folder.
func (l TaskLists) InFolder(folder TaskFolder) []Task {
	switch folder {
	case FolderActive:
		return l.Active
	case FolderCompleted:
		return l.Completed
	case FolderBlocked:
		return l.Blocked
	default:
		return nil
	}
}

// Feature is a product feature parsed from specs/features/<FTR-id>/spec.md.
type Feature struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Status         string   `json:"status,omitempty"`
	Priority       string   `json:"priority,omitempty"`
	Description    string   `json:"description,omitempty"`
	UserStories    []string `json:"userStories"`
	HasDesignSpec  bool     `json:"hasDesignSpec"`
	DesignSpecPath string   `json:"designSpecPath,omitempty"`
	SourcePath     string   `json:"sourcePath"`
}
