package config

import "strings"

// Network describes a known chain.
type Network struct {
	Name        string
	ChainID     int64
	ExplorerURL string
}

var networks = map[string]Network{
	"sepolia": {Name: "Sepolia Testnet", ChainID: 11155111, ExplorerURL: "https://sepolia.etherscan.io"},
	"mainnet": {Name: "Ethereum Mainnet", ChainID: 1, ExplorerURL: "https://etherscan.io"},
}

// LookupNetwork returns the known network with the given short name.
func LookupNetwork(name string) (Network, bool) {
	n, ok := networks[strings.ToLower(strings.TrimSpace(name))]
	return n, ok
}

// ExplorerAddressURL returns the block explorer page of an address on the
// given network, or "" when the network has no known explorer.
func ExplorerAddressURL(network, address string) string {
	n, ok := LookupNetwork(network)
	if !ok {
		return ""
	}
	return n.ExplorerURL + "/address/" + address
}

// ExplorerTxURL returns the block explorer page of a transaction.
func ExplorerTxURL(network, txHash string) string {
	n, ok := LookupNetwork(network)
	if !ok {
		return ""
	}
	return n.ExplorerURL + "/tx/" + txHash
}
