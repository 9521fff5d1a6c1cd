package model

// Customer is one entry of the per-customer directory. Events are routed
// to a customer when one of their tags names a directory entry.
type Customer struct {
	Recipient string
	SlackURL  string
	TeamsURL  string
}

// CustomerDirectory maps the routing tag to the customer entry. Built at
// startup, read-only afterwards.
type CustomerDirectory map[string]Customer

// Lookup returns the first tag present in the directory, in tag order.
func (d CustomerDirectory) Lookup(tags []string) (string, bool) {
	for _, tag := range tags {
		if _, ok := d[tag]; ok {
			return tag, true
		}
	}
	return "", false
}
