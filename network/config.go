package network

import "fmt"

// Environment variable names read by ResolveConfig.
const (
	EnvRPCURL  = "LIBWALLET_RPC_URL"
	EnvRPCUser = "LIBWALLET_RPC_USER"
	EnvRPCPass = "LIBWALLET_RPC_PASS"
)

// RPCConfig holds the connection parameters for a node's JSON-RPC interface.
type RPCConfig struct {
	URL      string `json:"url"`
	User     string `json:"user"`
	Password string `json:"password"`
	Network  string `json:"network"`
}

// NetworkPresets contains default RPC endpoints for local development nodes.
// Mainnet has no preset and must be configured explicitly.
var NetworkPresets = map[string]RPCConfig{
	"regtest": {URL: "http://localhost:18443", User: "libwallet", Password: "libwallet"},
	"testnet": {URL: "http://localhost:18332", User: "libwallet", Password: "libwallet"},
}

// ResolveConfig merges RPC configuration from three sources with decreasing priority:
//  1. explicit flags
//  2. environment variables (LIBWALLET_RPC_URL, LIBWALLET_RPC_USER, LIBWALLET_RPC_PASS)
//  3. network presets (regtest/testnet only)
func ResolveConfig(flags *RPCConfig, env map[string]string, network string) (*RPCConfig, error) {
	result := RPCConfig{Network: network}

	if preset, ok := NetworkPresets[network]; ok {
		result = preset
		result.Network = network
	}

	if env != nil {
		if v := env[EnvRPCURL]; v != "" {
			result.URL = v
		}
		if v := env[EnvRPCUser]; v != "" {
			result.User = v
		}
		if v := env[EnvRPCPass]; v != "" {
			result.Password = v
		}
	}

	if flags != nil {
		if flags.URL != "" {
			result.URL = flags.URL
		}
		if flags.User != "" {
			result.User = flags.User
		}
		if flags.Password != "" {
			result.Password = flags.Password
		}
	}

	if result.URL == "" {
		return nil, fmt.Errorf("%w: %s requires an explicit url (set --rpc-url or %s)", ErrNotConfigured, network, EnvRPCURL)
	}
	return &result, nil
}
