// ABOUTME: Endpoint path constants and builders for the platform REST contract
// ABOUTME: Single place to change if the server moves a route

package api

import "fmt"

// Auth endpoints. All but EndpointMe are exempt from the 401-refresh-retry
// cycle; a 401 from /auth/me means an expired token, not bad credentials.
const (
	EndpointLogin              = "/auth/login"
	EndpointRegister           = "/auth/register"
	EndpointLogout             = "/auth/logout"
	EndpointRefresh            = "/auth/refresh"
	EndpointMe                 = "/auth/me"
	EndpointVerifyEmail        = "/auth/verify-email"
	EndpointResendVerification = "/auth/resend-verification"
)

// EndpointNotificationStream is the server-push SSE endpoint.
const EndpointNotificationStream = "/notifications/stream"

// EndpointProblems lists problems.
const EndpointProblems = "/problems"

// EndpointProblem returns the detail path for a problem slug.
func EndpointProblem(slug string) string {
	return fmt.Sprintf("/problems/%s", slug)
}

// EndpointSubmit returns the submission path for a problem.
func EndpointSubmit(problemID int) string {
	return fmt.Sprintf("/problems/%d/submissions", problemID)
}

// EndpointSubmission returns the status path for a submission.
func EndpointSubmission(id int) string {
	return fmt.Sprintf("/submissions/%d", id)
}

// EndpointSubmissions is the authenticated user's submission history.
const EndpointSubmissions = "/submissions"

// IsAuthEndpoint reports whether path is one of the auth endpoints that must
// never trigger a token refresh when it returns 401.
func IsAuthEndpoint(path string) bool {
	switch path {
	case EndpointLogin, EndpointRegister, EndpointLogout, EndpointRefresh,
		EndpointVerifyEmail, EndpointResendVerification:
		return true
	}
	return false
}
