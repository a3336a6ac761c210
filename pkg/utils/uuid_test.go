package utils

import (
	"regexp"
	"strings"
	"testing"
)

func TestGenerateUUID(t *testing.T) {
	re := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

	uuids := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		uuid := GenerateUUID()
		if !re.MatchString(uuid) {
			t.Errorf("Generated UUID does not match expected pattern: %s", uuid)
		}
		if uuids[uuid] {
			t.Errorf("Duplicate UUID generated: %s", uuid)
		}
		uuids[uuid] = true

		segments := strings.Split(uuid, "-")
		expectedLengths := []int{8, 4, 4, 4, 12}
		for i, segment := range segments {
			if len(segment) != expectedLengths[i] {
				t.Errorf("UUID segment %d has incorrect length. Expected %d, got %d: %s",
					i+1, expectedLengths[i], len(segment), uuid)
			}
		}
	}
}
