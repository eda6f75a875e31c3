package chapters

// State is a chapter's state relative to the learner.
type State int

const (
	StateLocked     State = iota // Predecessor not yet completed
	StateAvailable                // Unlocked, never attempted
	StateInProgress               // Attempted, not completed
	StateCompleted                // Completed
)

// Icon returns the display icon for a chapter state.
func (s State) Icon() string {
	switch s {
	case StateLocked:
		return "🔒"
	case StateAvailable:
		return "🔓"
	case StateInProgress:
		return "📖"
	case StateCompleted:
		return "✅"
	default:
		return "?"
	}
}

// Label returns the display label for a chapter state.
func (s State) Label() string {
	switch s {
	case StateLocked:
		return "Locked"
	case StateAvailable:
		return "Available"
	case StateInProgress:
		return "In progress"
	case StateCompleted:
		return "Completed"
	default:
		return "Unknown"
	}
}

func (s State) String() string { return s.Label() }

// Chapter is one step of the learning path.
type Chapter struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Icon          string   `json:"icon"`
	Order         int      `json:"order"`
	Prerequisites []string `json:"prerequisites,omitempty"`
}

// Status is a chapter joined with the learner's progress in it.
type Status struct {
	Chapter
	State                State  `json:"-"`
	StateLabel           string `json:"state"`
	Unlocked             bool   `json:"unlocked"`
	Completed            bool   `json:"completed"`
	CompletedQuestions   int    `json:"completedQuestions"`
	TotalQuestions       int    `json:"totalQuestions"`
	CompletionPercentage int    `json:"completionPercentage"`
	Score                int    `json:"score"`
}

// seconde is the built-in path of the French "seconde" curriculum.
var seconde = []Chapter{
	{ID: "chapter_1", Title: "Nombres et calculs", Description: "Puissances, racines carrées et calculs numériques", Icon: "🔢", Order: 1},
	{ID: "chapter_2", Title: "Fonctions", Description: "Fonctions linéaires, affines et polynômes", Icon: "📈", Order: 2},
	{ID: "chapter_3", Title: "Géométrie", Description: "Aires, périmètres et théorème de Pythagore", Icon: "📐", Order: 3},
	{ID: "chapter_4", Title: "Probabilités", Description: "Événements, probabilités et statistiques", Icon: "🎲", Order: 4},
	{ID: "chapter_5", Title: "Vecteurs", Description: "Introduction aux vecteurs et calculs vectoriels", Icon: "➡️", Order: 5},
}
