package snscript

import "fmt"

// version information, set at link time with
// -ldflags "-X github.com/glycerine/snscript/snscript.GITLASTTAG=..."
var GITLASTTAG string
var GITLASTCOMMIT string

func Version() string {
	if GITLASTTAG == "" && GITLASTCOMMIT == "" {
		return "devel"
	}
	return fmt.Sprintf("%s/%s", GITLASTTAG, GITLASTCOMMIT)
}
