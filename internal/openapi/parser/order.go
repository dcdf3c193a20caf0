package parser

import (
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const componentSchemaPrefix = "#/components/schemas/"

// propertyOrders recovers the declaration order of request body properties.
// kin-openapi stores properties in maps, so the raw document is walked again
// as a yaml.Node tree (JSON documents parse as YAML too).
type propertyOrders struct {
	root *yaml.Node
}

func newPropertyOrders(raw []byte) propertyOrders {
	var doc yaml.Node
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return propertyOrders{}
	}
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		return propertyOrders{root: doc.Content[0]}
	}
	return propertyOrders{}
}

// lookup returns the property names of the request body schema in document
// order. Names the walk cannot place are appended sorted so the result always
// covers every property.
func (o propertyOrders) lookup(path, method, mediaType string, names []string) []string {
	var declared []string
	if o.root != nil && mediaType != "" {
		schema := mappingValue(o.root, "paths", path, strings.ToLower(method), "requestBody", "content", mediaType, "schema")
		schema = o.resolve(schema)
		if props := mappingValue(schema, "properties"); props != nil && props.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(props.Content); i += 2 {
				declared = append(declared, props.Content[i].Value)
			}
		}
	}
	return completeOrder(declared, names)
}

func (o propertyOrders) resolve(node *yaml.Node) *yaml.Node {
	for hops := 0; node != nil && hops < 8; hops++ {
		ref := mappingValue(node, "$ref")
		if ref == nil {
			return node
		}
		name, ok := strings.CutPrefix(ref.Value, componentSchemaPrefix)
		if !ok {
			return nil
		}
		node = mappingValue(o.root, "components", "schemas", name)
	}
	return node
}

func mappingValue(node *yaml.Node, keys ...string) *yaml.Node {
	current := node
	for _, key := range keys {
		if current == nil || current.Kind != yaml.MappingNode {
			return nil
		}
		var next *yaml.Node
		for i := 0; i+1 < len(current.Content); i += 2 {
			if current.Content[i].Value == key {
				next = current.Content[i+1]
				break
			}
		}
		current = next
	}
	return current
}

func completeOrder(declared, names []string) []string {
	known := make(map[string]struct{}, len(names))
	for _, name := range names {
		known[name] = struct{}{}
	}
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range declared {
		if _, ok := known[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	var rest []string
	for name := range known {
		if _, ok := seen[name]; !ok {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}
