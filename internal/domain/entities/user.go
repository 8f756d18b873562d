package entities

// CEFR proficiency codes used by the platform, ordered from beginner up.
const (
	LevelA0 = "A0"
	LevelA1 = "A1"
	LevelA2 = "A2"
	LevelB1 = "B1"
	LevelB2 = "B2"
	LevelC1 = "C1"
	LevelC2 = "C2"
)

var cefrOrder = map[string]int{
	LevelA0: 0,
	LevelA1: 1,
	LevelA2: 2,
	LevelB1: 3,
	LevelB2: 4,
	LevelC1: 5,
	LevelC2: 6,
}

// IsCEFRCode reports whether code is one of the seven recognized CEFR codes.
func IsCEFRCode(code string) bool {
	_, ok := cefrOrder[code]
	return ok
}

// User represents the authenticated account as returned by the backend.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Level  string `json:"level"`
	Points int    `json:"points"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role,omitempty"`
}

// UserPatch carries the fields a profile update may change. Nil fields are
// left untouched.
type UserPatch struct {
	Name   *string `json:"name,omitempty"`
	Avatar *string `json:"avatar,omitempty"`
	Level  *string `json:"level,omitempty"`
	Points *int    `json:"points,omitempty"`
}

// Apply shallow-merges the patch into a copy of u and returns the result.
func (p UserPatch) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Avatar != nil {
		u.Avatar = *p.Avatar
	}
	if p.Level != nil {
		u.Level = *p.Level
	}
	if p.Points != nil {
		u.Points = *p.Points
	}
	return u
}
