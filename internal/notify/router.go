package notify

// Resolve returns the enabled clients routed for category, in route order
// and without duplicates. A category with no route falls back to the
// "_default" route; with neither, the result is empty.
func (rc *RoutingConfig) Resolve(category string) []string {
	if rc == nil {
		return nil
	}
	route, ok := rc.routing[category]
	if category == "" || !ok {
		route = rc.routing[DefaultRoute]
	}
	if len(route) == 0 {
		return nil
	}
	out := make([]string, 0, len(route))
	seen := make(map[string]struct{}, len(route))
	for _, name := range route {
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		c, ok := rc.clients[name]
		if !ok || !c.Config.Enabled {
			continue
		}
		out = append(out, name)
	}
	return out
}
