package release

import (
	"regexp"
	"strings"
)

// RefKind classifies a git reference in the ESP-IDF repository.
type RefKind string

const (
	RefCommit RefKind = "commit"
	RefTag    RefKind = "tag"
	RefBranch RefKind = "branch"
)

// GitRef pins the ESP-IDF checkout to a point in its repository.
type GitRef struct {
	Kind  RefKind
	Value string
}

func (r GitRef) String() string {
	return string(r.Kind) + ":" + r.Value
}

var bareVersionRe = regexp.MustCompile(`^v?\d+\.\d+(\.\d+)?$`)

// ParseGitRef parses the ESP-IDF version mini-language:
//
//   - commit:<hash>  pins to a commit
//   - tag:<tag>      pins to a tag
//   - branch:<name>  tracks a branch tip
//   - v<major>.<minor> or <major>.<minor>  normalizes to tag v<major>.<minor>
//   - any other bare token is treated as a branch name
//
// The reference is not validated against the remote repository; an invalid
// reference surfaces when the checkout is attempted.
func ParseGitRef(s string) GitRef {
	switch {
	case strings.HasPrefix(s, "commit:"):
		return GitRef{Kind: RefCommit, Value: strings.TrimPrefix(s, "commit:")}
	case strings.HasPrefix(s, "tag:"):
		return GitRef{Kind: RefTag, Value: strings.TrimPrefix(s, "tag:")}
	case strings.HasPrefix(s, "branch:"):
		return GitRef{Kind: RefBranch, Value: strings.TrimPrefix(s, "branch:")}
	case bareVersionRe.MatchString(s):
		return GitRef{Kind: RefTag, Value: "v" + strings.TrimPrefix(s, "v")}
	default:
		return GitRef{Kind: RefBranch, Value: s}
	}
}
