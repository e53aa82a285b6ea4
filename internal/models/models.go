package models

import "time"

// User is the identity minted on login/register. Immutable after creation;
// equality is by ID.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

// Room holds one shared code buffer, its language, and the participants.
// Rooms live for the lifetime of the process; they are never deleted.
type Room struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Language     Language  `json:"language"`
	Participants []User    `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	CreatedBy    string    `json:"createdBy"`
}

// ExecutionResult is returned once per run request and never stored.
// Evaluation faults are carried in Error rather than raised.
type ExecutionResult struct {
	Output        string  `json:"output"`
	Error         string  `json:"error,omitempty"`
	ExecutionTime float64 `json:"executionTime"` // wall-clock milliseconds
}

type Language string

const (
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangPython     Language = "python"
	LangJava       Language = "java"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangGo         Language = "go"
	LangRust       Language = "rust"
)

type LanguageSpec struct {
	ID        Language `json:"id"`
	Name      string   `json:"name"`
	Extension string   `json:"extension"`
}

// SupportedLanguages is the fixed set offered to clients. Only javascript
// is actually evaluated; the rest run through the mock path.
func SupportedLanguages() []LanguageSpec {
	return []LanguageSpec{
		{ID: LangJavaScript, Name: "JavaScript", Extension: "js"},
		{ID: LangTypeScript, Name: "TypeScript", Extension: "ts"},
		{ID: LangPython, Name: "Python", Extension: "py"},
		{ID: LangJava, Name: "Java", Extension: "java"},
		{ID: LangCPP, Name: "C++", Extension: "cpp"},
		{ID: LangCSharp, Name: "C#", Extension: "cs"},
		{ID: LangGo, Name: "Go", Extension: "go"},
		{ID: LangRust, Name: "Rust", Extension: "rs"},
	}
}

// DefaultLanguage is seeded into every new room.
const DefaultLanguage = LangJavaScript

// StarterCode is the template every new room starts from.
const StarterCode = "// Welcome to CodeCollab!\n// Start coding here...\n\nfunction greet(name) {\n  return `Hello, ${name}!`;\n}\n\nconsole.log(greet(\"World\"));"

// AvatarURLPrefix is completed with the user's email as the seed.
const AvatarURLPrefix = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// NoOutputMessage is returned when evaluated code produced neither prints
// nor a defined result value.
const NoOutputMessage = "Code executed successfully (no output)"

/*** WebSocket frames for the live code-update gateway ***/

type WSFrame struct {
	Type string      `json:"type"` // "code","error"
	Data interface{} `json:"data"`
}

// CodeUpdate is the payload of a "code" frame, in both directions:
// inbound it carries an edit, outbound it carries the notification with
// the editing user's id so consumers can drop their own echo.
type CodeUpdate struct {
	Code   string `json:"code"`
	UserID string `json:"userId,omitempty"`
}
