package config

import "fmt"

// Network identifies which chain the sandbox is configured for.
type Network string

const (
	Mainnet Network = "mainnet"
	Testnet Network = "testnet"
	Betanet Network = "betanet"
)

// networkSpec holds the fixed per-network settings. Networks map to a
// release channel (which software build the image uses), a node config
// template, a genesis template, and, where fast catchup is supported,
// a catchpoint endpoint.
type networkSpec struct {
	channel       string
	configFile    string
	genesisFile   string
	catchpointURL string
}

var networks = map[Network]networkSpec{
	Mainnet: {
		channel:       "stable",
		configFile:    "config.mainnet.json",
		genesisFile:   "genesis.mainnet.json",
		catchpointURL: "https://fastcatchup.chainbox.dev/channel/stable/mainnet/latest.catchpoint",
	},
	Testnet: {
		channel:       "stable",
		configFile:    "config.testnet.json",
		genesisFile:   "genesis.testnet.json",
		catchpointURL: "https://fastcatchup.chainbox.dev/channel/stable/testnet/latest.catchpoint",
	},
	Betanet: {
		channel:     "beta",
		configFile:  "config.betanet.json",
		genesisFile: "genesis.betanet.json",
		// No catchpoint endpoint: betanet resets too often for
		// snapshots to be published.
	},
}

// Resolve maps a CLI network token to a Network. An empty token defaults
// to testnet; anything else unknown is an input error.
func Resolve(token string) (Network, error) {
	if token == "" {
		return Testnet, nil
	}
	n := Network(token)
	if _, ok := networks[n]; !ok {
		return "", fmt.Errorf("unknown network %q (want mainnet, testnet, or betanet)", token)
	}
	return n, nil
}

// Channel returns the release channel the network's image builds from.
func (n Network) Channel() string { return networks[n].channel }

// ConfigFile returns the node config template name for the network.
func (n Network) ConfigFile() string { return networks[n].configFile }

// GenesisFile returns the genesis template name for the network.
func (n Network) GenesisFile() string { return networks[n].genesisFile }

// CatchpointURL returns the catchpoint endpoint for the network, or ""
// when fast catchup is not supported on it.
func (n Network) CatchpointURL() string { return networks[n].catchpointURL }

func (n Network) String() string { return string(n) }
