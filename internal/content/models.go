package content

// GroupType discriminates the parent of a quiz group.
type GroupType string

const (
	GroupTypeModule  GroupType = "module"
	GroupTypeChapter GroupType = "chapter"
)

type Module struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Sequence    int    `json:"sequence"` // 1-based rank within its year
	Year        int    `json:"year"`
	CreatedAt   int64  `json:"created_at,omitempty"`
}

type Chapter struct {
	ID        string `json:"id"`
	ModuleID  string `json:"module_id"`
	Title     string `json:"title"`
	Sequence  int    `json:"sequence"` // 1-based rank within its module
	CreatedAt int64  `json:"created_at,omitempty"`
}

type Question struct {
	ID      string   `json:"id"`
	Text    string   `json:"text"`
	Type    string   `json:"type"` // mcq_single, mcq_multi, true_false, short_word
	Options []string `json:"options,omitempty"`
	Tags    []string `json:"tags,omitempty"`
}

// QuizGroup is a named question set scoped to either a module or a chapter.
type QuizGroup struct {
	ID               string     `json:"id"`
	Type             GroupType  `json:"type"`
	ModuleID         string     `json:"module_id,omitempty"`
	ChapterID        string     `json:"chapter_id,omitempty"`
	Title            string     `json:"title"`
	PassingThreshold float64    `json:"passing_threshold"`
	Questions        []Question `json:"questions"`
	CreatedAt        int64      `json:"created_at,omitempty"`
}
