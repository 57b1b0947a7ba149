// ABOUTME: Commit messages for the two halves of a split
// ABOUTME: Prefixes the original message unless an explicit message is given

package split

// GenerateSplitMessages creates the two commit messages for a split. The
// remainder commit comes first in history; the selected commit uses message
// when one is given.
func GenerateSplitMessages(original, message, remainderPrefix, selectedPrefix string) (string, string) {
	remainderMsg := remainderPrefix + original

	selectedMsg := message
	if selectedMsg == "" {
		selectedMsg = selectedPrefix + original
	}

	return remainderMsg, selectedMsg
}
