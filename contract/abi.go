package contract

import (
	"sort"

	"github.com/invopop/jsonschema"
)

// MethodABI describes an entry point for clients building calls
type MethodABI struct {
	Name    string             `json:"name"`
	View    bool               `json:"view"`
	AliasOf string             `json:"alias_of,omitempty"`
	Args    *jsonschema.Schema `json:"args"`
}

// ABI lists every entry point with the JSON schema of its arguments, in lexical order
func (c *DeCash) ABI() []MethodABI {
	reflector := &jsonschema.Reflector{
		DoNotReference:            true,
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}

	abi := make([]MethodABI, 0, len(c.methods))
	for _, m := range c.methods {
		abi = append(abi, MethodABI{
			Name:    m.Name,
			View:    m.View,
			AliasOf: m.AliasOf,
			Args:    reflector.Reflect(m.args),
		})
	}
	sort.Slice(abi, func(i, j int) bool { return abi[i].Name < abi[j].Name })
	return abi
}
