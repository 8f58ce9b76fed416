package api

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/javiermolinar/timeflow/internal/schedule"
)

// User is a staff account.
type User struct {
	ID       string             `json:"id"`
	Login    string             `json:"login,omitempty"`
	FullName string             `json:"fullName"`
	Email    string             `json:"email,omitempty"`
	Role     schedule.Role      `json:"role,omitempty"`
	Subjects []schedule.Subject `json:"subjects,omitempty"`
}

// RoleCode is the numeric role the register endpoint expects.
type RoleCode int

const (
	RoleCodeTeacher       RoleCode = 1
	RoleCodeManager       RoleCode = 2
	RoleCodeAdministrator RoleCode = 3
)

// RoleCodeFor maps a role name to its register code.
func RoleCodeFor(r schedule.Role) (RoleCode, error) {
	switch schedule.Role(strings.ToLower(string(r))) {
	case "teacher":
		return RoleCodeTeacher, nil
	case "manager":
		return RoleCodeManager, nil
	case "administrator", "admin":
		return RoleCodeAdministrator, nil
	}
	return 0, fmt.Errorf("unknown role %q (want Teacher, Manager or Administrator)", r)
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Login    string `json:"login" validate:"notblank"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Login    string   `json:"login" validate:"notblank"`
	Password string   `json:"password" validate:"required,min=6"`
	FullName string   `json:"fullName" validate:"notblank"`
	Email    string   `json:"email" validate:"required,email"`
	Role     RoleCode `json:"role" validate:"oneof=1 2 3"`
}

// UpdateUserRequest is the body of PUT /users/{id}.
type UpdateUserRequest struct {
	FullName string `json:"fullName" validate:"notblank"`
	Email    string `json:"email" validate:"required,email"`
}

type subjectRequest struct {
	Name string `json:"name" validate:"notblank"`
}

// TimeSlotRequest is the body of POST /timeSlots.
type TimeSlotRequest struct {
	DayOfWeek schedule.DayOfWeek `json:"dayOfWeek" validate:"dayofweek"`
	Time      string             `json:"time" validate:"slottime"`
	IsBusy    bool               `json:"isBusy"`
	UserID    string             `json:"userId" validate:"required"`
}

// rangeRequest is the body of POST /lessons/range.
type rangeRequest struct {
	UserID    string `json:"userId" validate:"required"`
	StartDate string `json:"startDate" validate:"required"`
	EndDate   string `json:"endDate" validate:"required"`
}

type rescheduleRequest struct {
	LessonID      string `json:"lessonId" validate:"required"`
	NewLessonDate string `json:"newLessonDate" validate:"required"`
}

// ScheduleRequest is the body of the schedule creation endpoints. Either
// ClientID or FullName and Age identify the client.
type ScheduleRequest struct {
	ClientID  *string                   `json:"ClientId"`
	FullName  *string                   `json:"FullName"`
	Age       *int                      `json:"Age" validate:"omitempty,min=1,max=120"`
	SubjectID string                    `json:"SubjectId" validate:"required"`
	Slots     []schedule.SlotPreference `json:"Slots" validate:"required,min=1,dive"`
	StartDate string                    `json:"StartDate" validate:"required,datetime=2006-01-02"`
	Number    int                       `json:"Number" validate:"min=1"`
}

// AutoSearchRequest is the body of POST /lessons/auto-search. DayOfWeek is
// numeric, Sunday=0.
type AutoSearchRequest struct {
	ClientID  string `json:"clientId" validate:"required"`
	DayOfWeek int    `json:"dayOfWeek" validate:"min=0,max=6"`
	Time      string `json:"time" validate:"slottime"`
	Number    int    `json:"number" validate:"min=1"`
}

// Mode is the auto-assignment strategy of the schedule creation endpoint.
type Mode string

const (
	ModeMostFree  Mode = "TheMostFree"
	ModeLeastFree Mode = "TheLeastFree"
)

// ParseMode accepts the wire names and the short forms "most" and "least".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "themostfree", "most", "most-free":
		return ModeMostFree, nil
	case "theleastfree", "least", "least-free":
		return ModeLeastFree, nil
	}
	return "", fmt.Errorf("unknown mode %q (want TheMostFree or TheLeastFree)", s)
}

// wireTimestamp formats t the way the API expects absolute instants.
func wireTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

// usersPage accepts both a bare array and {"users": [...]}.
type usersPage []User

func (p *usersPage) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var users []User
		if err := json.Unmarshal(data, &users); err != nil {
			return err
		}
		*p = users
		return nil
	}
	var wrapped struct {
		Users []User `json:"users"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	*p = wrapped.Users
	return nil
}
