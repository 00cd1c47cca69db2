package metadata

// migrate upgrades a raw document to the current schema version in place.
// It is idempotent: running it on an already-current document changes
// nothing. Returns true when the document was modified.
func migrate(doc map[string]interface{}) bool {
	version := 0
	if v, ok := doc["version"].(int); ok {
		version = v
	}

	if version >= SchemaVersion {
		return false
	}

	// v0 -> v1: early documents stored the conversation log under "history".
	if _, ok := doc["conversation_history"]; !ok {
		if history, ok := doc["history"]; ok {
			doc["conversation_history"] = history
			delete(doc, "history")
		}
	}

	doc["version"] = SchemaVersion
	return true
}
