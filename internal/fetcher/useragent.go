package fetcher

import "math/rand"

// defaultUserAgents is the rotation pool used when the configuration does
// not supply one. Real browser strings reduce the chance of being served
// bot-specific content.
var defaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:121.0) Gecko/20100101 Firefox/121.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36 Edg/120.0.2210.91",
}

// AgentPool serves user-agent strings for per-attempt rotation.
type AgentPool struct {
	agents []string
}

// NewAgentPool creates a pool from the given agents, falling back to the
// built-in list when empty.
func NewAgentPool(agents []string) *AgentPool {
	if len(agents) == 0 {
		agents = defaultUserAgents
	}
	return &AgentPool{agents: agents}
}

// Pick returns a random user agent.
func (p *AgentPool) Pick() string {
	return p.agents[rand.Intn(len(p.agents))]
}

// First returns a stable agent, used for robots.txt fetches.
func (p *AgentPool) First() string {
	return p.agents[0]
}
