package conversation

// Project converts a history into the chatbot's flat role/content turns.
//
// Only messages authored by the user or the assistant with non-empty text
// are kept. Order is preserved and adjacent same-role turns are neither
// merged nor deduplicated. Unknown or nil items are skipped.
func Project(items []Item) []Turn {
	turns := make([]Turn, 0, len(items))
	for _, item := range items {
		if item == nil || item.ItemType() != ItemMessage {
			continue
		}

		role := item.ItemRole()
		if role != RoleUser && role != RoleAssistant {
			continue
		}

		text := item.TextContent()
		if text == "" {
			continue
		}

		turns = append(turns, Turn{Role: role, Content: text})
	}
	return turns
}
