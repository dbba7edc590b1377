// ABOUTME: REST data model shared by the gateway, poller, and CLI
// ABOUTME: Mirrors the platform's JSON contract for users and submissions

package api

import "time"

// User is the authenticated account as returned by /auth/me and the
// login/register envelopes.
type User struct {
	ID            int       `json:"id"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Role          string    `json:"role"`
	EmailVerified bool      `json:"email_verified"`
	XP            int       `json:"xp"`
	Level         int       `json:"level"`
	SolvedCount   int       `json:"solved_count"`
	CurrentStreak int       `json:"current_streak"`
	CreatedAt     time.Time `json:"created_at"`
}

// SubmissionStatus is the judging verdict for a submission.
type SubmissionStatus string

// Submission statuses. Pending and Processing are the only non-terminal values;
// everything else is a definitive verdict.
const (
	StatusPending             SubmissionStatus = "Pending"
	StatusProcessing          SubmissionStatus = "Processing"
	StatusAccepted            SubmissionStatus = "Accepted"
	StatusWrongAnswer         SubmissionStatus = "Wrong Answer"
	StatusTimeLimitExceeded   SubmissionStatus = "Time Limit Exceeded"
	StatusMemoryLimitExceeded SubmissionStatus = "Memory Limit Exceeded"
	StatusRuntimeError        SubmissionStatus = "Runtime Error"
	StatusCompilationError    SubmissionStatus = "Compilation Error"
	StatusInternalError       SubmissionStatus = "Internal Error"
)

// Terminal reports whether the status is a definitive verdict after which the
// server will not change the submission again.
func (s SubmissionStatus) Terminal() bool {
	switch s {
	case StatusPending, StatusProcessing:
		return false
	case "":
		return false
	default:
		return true
	}
}

// Submission is a judged (or in-flight) solution attempt.
type Submission struct {
	ID              int              `json:"id"`
	ProblemID       int              `json:"problem_id"`
	LanguageID      int              `json:"language_id"`
	Status          SubmissionStatus `json:"status"`
	RuntimeMS       *int             `json:"runtime,omitempty"`
	MemoryKB        *int             `json:"memory,omitempty"`
	ErrorMessage    string           `json:"error_message,omitempty"`
	PassedTestCases int              `json:"passed_test_cases"`
	TotalTestCases  int              `json:"total_test_cases"`
	CreatedAt       time.Time        `json:"created_at"`
}

// Problem is the listing/detail view of a challenge.
type Problem struct {
	ID         int    `json:"id"`
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	XPReward   int    `json:"xp_reward"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

// AuthResponse is the success envelope returned by login, register, and
// refresh validation. User is absent on responses that carry only a message.
type AuthResponse struct {
	Message string `json:"message"`
	User    *User  `json:"user,omitempty"`
}

// SubmitRequest is the body of POST /problems/{id}/submissions.
type SubmitRequest struct {
	LanguageID int    `json:"language_id"`
	Code       string `json:"code"`
}

// SubmissionPage is a paginated submission listing.
type SubmissionPage struct {
	Data  []Submission `json:"data"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
}
