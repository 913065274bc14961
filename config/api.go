package config

// APIConfig configures the HTTP API served by the serve command.
type APIConfig struct {
	Addr string `json:"addr"`
	// Token, when set, is required as a bearer token on the run log endpoint.
	Token string `json:"token"`
}

func (c *APIConfig) SetDefaults() {
	if c.Addr == "" {
		c.Addr = ":8080"
	}
}
