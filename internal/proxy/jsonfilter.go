package proxy

import "encoding/json"

// FilterServers removes ad-named entries from a decoded JSON payload's
// "servers" list. Payloads without that shape are re-encoded unchanged;
// ok is false when body is not valid JSON at all, in which case the caller
// must pass the raw bytes through untouched.
func FilterServers(body []byte) (filtered []byte, ok bool) {
	var payload interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, false
	}

	obj, isObj := payload.(map[string]interface{})
	if isObj {
		if servers, isList := obj["servers"].([]interface{}); isList {
			kept := make([]interface{}, 0, len(servers))
			for _, entry := range servers {
				if m, isMap := entry.(map[string]interface{}); isMap {
					if name, isStr := m["name"].(string); isStr && IsAdName(name) {
						continue
					}
				}
				kept = append(kept, entry)
			}
			obj["servers"] = kept
		}
	}

	out, err := json.Marshal(payload)
	if err != nil {
		return nil, false
	}
	return out, true
}
