package vault

import (
	"strings"

	log "github.com/sirupsen/logrus"
)

// Lister lists the immediate children of a directory-like path.
type Lister interface {
	List(path string) ([]string, error)
}

// Walk visits every leaf secret reachable under root, which must end in
// "/". The traversal is depth-first in the order the store returns
// names, driven by an explicit stack so arbitrarily deep trees cannot
// exhaust the call stack. A listing failure is reported as a warning
// and prunes that subtree; the walk itself never fails.
func Walk(l Lister, root string, visit func(leaf string)) {
	stack := []string{root}

	for len(stack) > 0 {
		path := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if !strings.HasSuffix(path, "/") {
			visit(path)
			continue
		}

		children, err := l.List(path)
		if err != nil {
			log.WithError(err).Warnf("failed to list %s, skipping subtree", path)
			continue
		}

		// Push in reverse so the first listed child is processed first.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, path+children[i])
		}
	}
}
