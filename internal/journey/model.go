package journey

import "time"

// Document is the complete client-authored state of one journey: metadata,
// lifecycle flags, and the five child collections. Clients submit the whole
// document on every save; the store treats it as the sole source of truth.
type Document struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Lifecycle flags are independent booleans, not a state machine.
	IsPublished bool `json:"isPublished"`
	IsDeleted   bool `json:"isDeleted"`
	IsArchived  bool `json:"isArchived"`
	IsLocked    bool `json:"isLocked"`
	IsReadOnly  bool `json:"isReadOnly"`
	IsEditable  bool `json:"isEditable"`
	IsViewOnly  bool `json:"isViewOnly"`

	Nodes      []Node      `json:"nodes"`
	Edges      []Edge      `json:"edges"`
	Goals      []Goal      `json:"goals"`
	Milestones []Milestone `json:"milestones"`
	Reports    []Report    `json:"reports"`
}

// NewDocument returns an empty document with the service defaults applied.
func NewDocument(name, description string, now time.Time) *Document {
	if name == "" {
		name = "Untitled Journey"
	}
	if description == "" {
		description = "No description"
	}
	return &Document{
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
		IsEditable:  true,
	}
}

// Position is canvas placement. It is UI-transient state and optional on the wire.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Node is one canvas node. The subtype travels under the hyphenated
// "node-subtype" key on the wire; internally it is just Subtype.
type Node struct {
	ID       string    `json:"id"`
	Type     string    `json:"type"`
	Subtype  string    `json:"node-subtype"`
	Position *Position `json:"position,omitempty"`
	Data     Value     `json:"data"`
	Selected bool      `json:"selected"`
}

// Edge is one canvas edge. Endpoints reference node local ids; the store does
// not validate that they exist.
type Edge struct {
	ID       string `json:"id"`
	Source   string `json:"source"`
	Target   string `json:"target"`
	Data     Value  `json:"data"`
	Selected bool   `json:"selected"`
	Type     string `json:"type"`
	Animated bool   `json:"animated"`
	Style    Value  `json:"style"`
}

type Goal struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	TargetValue  float64    `json:"targetValue"`
	CurrentValue float64    `json:"currentValue"`
	Unit         string     `json:"unit"`
	Deadline     *time.Time `json:"deadline,omitempty"`
	Status       GoalStatus `json:"status"`
	Priority     Priority   `json:"priority"`
	Category     string     `json:"category"`
}

type Milestone struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	TargetDate   *time.Time      `json:"targetDate,omitempty"`
	Status       MilestoneStatus `json:"status"`
	Progress     int             `json:"progress"`
	Dependencies []string        `json:"dependencies"`
	SortOrder    int             `json:"sortOrder"`
}

type Report struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        ReportType `json:"type"`
	GeneratedAt time.Time  `json:"generatedAt"`
	Data        Value      `json:"data"`
}

// Stats are the per-journey aggregate counts maintained by the store.
type Stats struct {
	TotalNodes          int `json:"totalNodes"`
	TotalEdges          int `json:"totalEdges"`
	TotalGoals          int `json:"totalGoals"`
	CompletedGoals      int `json:"completedGoals"`
	TotalMilestones     int `json:"totalMilestones"`
	CompletedMilestones int `json:"completedMilestones"`
	TotalReports        int `json:"totalReports"`
}

// Summary is one row of a journey listing: metadata plus aggregate counts.
type Summary struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsPublished bool      `json:"isPublished"`
	IsArchived  bool      `json:"isArchived"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Stats       Stats     `json:"stats"`
}
