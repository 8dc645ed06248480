// Package all blank-imports every built-in plugin package so that
// importing all for its side effects is enough to populate the
// builtin registry, the way the teacher's api.go pulls in its whole
// builtins tree with one import.
package all

import (
	_ "github.com/ember-lang/ember/internal/builtin/clock"
	_ "github.com/ember-lang/ember/internal/builtin/len"
	_ "github.com/ember-lang/ember/internal/builtin/print"
	_ "github.com/ember-lang/ember/internal/builtin/typeof"
)
