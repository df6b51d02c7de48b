// Package chain provides the Ethereum network registry and shared helpers
// (retry, rate limiting) used by the network-facing clients.
package chain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	donateerr "github.com/ethpkg/donate/pkg/errors"
)

// NetworkID is an Ethereum network identifier as reported by net_version.
type NetworkID string

// Known network identifiers.
const (
	MainNetworkID    NetworkID = "1"
	RopstenNetworkID NetworkID = "3"
	RinkebyNetworkID NetworkID = "4"
	GoerliNetworkID  NetworkID = "5"
	SepoliaNetworkID NetworkID = "11155111"
)

// maxSuggestionDistance is the largest edit distance still offered as a "did you mean".
const maxSuggestionDistance = 3

// Network describes a network a donation can be sent on.
type Network struct {
	ID      NetworkID
	Name    string   // Short name used in config and flags
	Display string   // Human-readable name shown to the user, e.g. "Ropsten test"
	Aliases []string // Additional accepted names
}

// IsMain returns true for Ethereum mainnet.
func (n Network) IsMain() bool {
	return n.ID == MainNetworkID
}

// String returns the human-readable network name.
func (n Network) String() string {
	return n.Display + " network"
}

//nolint:gochecknoglobals // Static registry of well-known networks
var networks = []Network{
	{ID: MainNetworkID, Name: "main", Display: "Main", Aliases: []string{"mainnet", "homestead", "ethereum"}},
	{ID: RopstenNetworkID, Name: "ropsten", Display: "Ropsten test"},
	{ID: RinkebyNetworkID, Name: "rinkeby", Display: "Rinkeby test"},
	{ID: GoerliNetworkID, Name: "goerli", Display: "Goerli test", Aliases: []string{"gorli"}},
	{ID: SepoliaNetworkID, Name: "sepolia", Display: "Sepolia test"},
}

// Networks returns all known networks.
func Networks() []Network {
	out := make([]Network, len(networks))
	copy(out, networks)
	return out
}

// LookupNetwork returns the network for an identifier reported by a provider.
// Unknown identifiers produce a network named after the raw identifier.
func LookupNetwork(id NetworkID) Network {
	for _, n := range networks {
		if n.ID == id {
			return n
		}
	}
	return Network{ID: id, Name: string(id), Display: fmt.Sprintf("unknown (id %s)", id)}
}

// ParseNetwork resolves a network from a name, alias or numeric identifier.
func ParseNetwork(s string) (Network, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Network{}, donateerr.WithDetails(donateerr.ErrUnknownNetwork, map[string]string{"network": "(empty)"})
	}

	for _, n := range networks {
		if string(n.ID) == s || n.Name == s {
			return n, nil
		}
		for _, a := range n.Aliases {
			if a == s {
				return n, nil
			}
		}
	}

	err := donateerr.WithDetails(donateerr.ErrUnknownNetwork, map[string]string{"network": s})
	if suggestion := suggestNetwork(s); suggestion != "" {
		err = donateerr.WithSuggestion(err, fmt.Sprintf("did you mean %q?", suggestion))
	}
	return Network{}, err
}

// suggestNetwork returns the closest known network name, or "" when nothing is close.
func suggestNetwork(input string) string {
	type candidate struct {
		name string
		dist int
	}

	var candidates []candidate
	for _, n := range networks {
		names := append([]string{n.Name}, n.Aliases...)
		for _, name := range names {
			d := levenshtein.ComputeDistance(input, name)
			if d <= maxSuggestionDistance {
				candidates = append(candidates, candidate{name: n.Name, dist: d})
			}
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].dist < candidates[j].dist
	})
	return candidates[0].name
}
