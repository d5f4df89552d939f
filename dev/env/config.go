package devenv

// PortalTestConfig is read from dev/.state/portal_config.json for tests that
// talk to the real portal. Those tests are skipped when the file is absent.
type PortalTestConfig struct {
	BaseUrl  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	Category string `json:"category"`
	Event    string `json:"event"`
}
