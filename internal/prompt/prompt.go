package prompt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/san-kum/scaletilt/internal/dynamo"
)

// Summary is the one-line description shared by every sample.
const Summary = "Scale tilts until lower pan reaches base level, heavier pan highlighted red."

// Build describes the scene and the motion shown in the video, ending with
// the expected answer.
func Build(w dynamo.WeightConfig, o dynamo.Outcome) string {
	var b strings.Builder
	b.WriteString("Balance scale with weights on both pans:\n")
	fmt.Fprintf(&b, "- LEFT: %s = %d\n", join(w.Left), o.LeftSum)
	fmt.Fprintf(&b, "- RIGHT: %s = %d\n\n", join(w.Right), o.RightSum)

	if o.Winner == dynamo.Tie {
		b.WriteString("The scale starts balanced. Both pans carry the same total weight.\n")
		b.WriteString("The beam does not tilt and both pans stay level.\n\n")
		fmt.Fprintf(&b, "Answer: NEITHER side tips down (%d = %d).", o.LeftSum, o.RightSum)
		return b.String()
	}

	heavy, light := o.Lower()
	b.WriteString("The scale starts balanced. The heavier side tips DOWN.\n")
	b.WriteString("The beam tilts until the lower pan reaches the base level (red dashed line appears).\n")
	b.WriteString("The heavier pan is highlighted in red.\n\n")
	fmt.Fprintf(&b, "Answer: %s side tips down (%d > %d).", strings.ToUpper(o.Winner.String()), heavy, light)
	return b.String()
}

func join(weights []int) string {
	parts := make([]string, len(weights))
	for i, v := range weights {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " + ")
}
