package user

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
)

// Reserved words that cannot be used as nicknames.
var reservedNicknames = map[string]struct{}{
	"admin": {}, "administrator": {}, "moderator": {}, "mod": {},
	"system": {}, "anonymous": {}, "user": {}, "support": {},
	"help": {}, "info": {},
}

var nicknamePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*[a-zA-Z0-9]$`)
var consecutiveSpecials = regexp.MustCompile(`[_-]{2,}`)

// ValidateNickname checks a nickname against the naming rules: 3-30 chars,
// alphanumeric plus underscore/hyphen, no leading/trailing/consecutive
// special characters, not a reserved word.
func ValidateNickname(nickname string) error {
	if len(nickname) < 3 {
		return fmt.Errorf("nickname must be at least 3 characters long")
	}
	if len(nickname) > 30 {
		return fmt.Errorf("nickname cannot exceed 30 characters")
	}
	if _, ok := reservedNicknames[strings.ToLower(nickname)]; ok {
		return fmt.Errorf("this nickname is reserved and cannot be used")
	}
	if !nicknamePattern.MatchString(nickname) {
		return fmt.Errorf("nickname must start and end with alphanumeric characters and contain only letters, numbers, underscores, and hyphens")
	}
	if consecutiveSpecials.MatchString(nickname) {
		return fmt.Errorf("nickname cannot contain consecutive special characters")
	}
	return nil
}

var nicknameAdjectives = []string{"clever", "jolly", "brave", "sly", "gentle"}
var nicknameAnimals = []string{"panda", "fox", "raccoon", "koala", "lion"}

// GenerateNickname produces a URL-safe default nickname for registrations
// that omit one. Callers must still check uniqueness.
func GenerateNickname() string {
	return fmt.Sprintf("%s_%s_%d",
		nicknameAdjectives[rand.Intn(len(nicknameAdjectives))],
		nicknameAnimals[rand.Intn(len(nicknameAnimals))],
		rand.Intn(1000),
	)
}
