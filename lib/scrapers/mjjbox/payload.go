package mjjbox

// BuildFormPayload fills a classified form with credentials. Fields keep
// their literal values unless they are the detected username/password
// field; submit and button inputs are triggers, not form data, and are
// omitted. Hidden fields missed by the field pass (miscategorized type
// attributes) are backfilled from the hidden map.
func BuildFormPayload(form *ClassifiedForm, username, password string) map[string]string {
	payload := map[string]string{}
	for _, f := range form.Fields {
		if f.Type == "submit" || f.Type == "button" {
			continue
		}
		switch f.Name {
		case form.UsernameField:
			payload[f.Name] = username
		case form.PasswordField:
			payload[f.Name] = password
		default:
			payload[f.Name] = f.Value
		}
	}
	for k, v := range form.Hidden {
		if _, ok := payload[k]; !ok {
			payload[k] = v
		}
	}
	return payload
}

// BlindPayloads is the fallback when no form could be classified: the
// full Cartesian product of user hints by pass hints, each a two-field
// guess at the site's login parameters. Order is deterministic, user
// hints in the outer loop.
func BlindPayloads(hints FieldHints, username, password string) []map[string]string {
	var combos []map[string]string
	for _, u := range hints.User {
		for _, p := range hints.Pass {
			combos = append(combos, map[string]string{
				u: username,
				p: password,
			})
		}
	}
	return combos
}
