package api

const (
	// sessionCookieName carries the encrypted PASETO session.
	sessionCookieName = "larder_session"

	// csrfHeader carries the anti-forgery token on state-changing requests.
	csrfHeader = "X-CSRF-Token"

	// imageCacheControl applies to raw recipe images. Images change only
	// through an edit, which the client learns about from modified_at.
	imageCacheControl = "private, max-age=300"
)
