package app

import (
	"github.com/Bassline-Org/bassline-sub010/gadgets/arith"
	"github.com/Bassline-Org/bassline-sub010/gadgets/collect"
	"github.com/Bassline-Org/bassline-sub010/gadgets/debug"
	"github.com/Bassline-Org/bassline-sub010/gadgets/logic"
	"github.com/Bassline-Org/bassline-sub010/internal/gadget"
)

// coreModules is the definitive list of gadget libraries compiled into the
// bassline binary.
var coreModules = []gadget.Module{
	&arith.Module{},
	&logic.Module{},
	&collect.Module{},
	&debug.Module{},
}
