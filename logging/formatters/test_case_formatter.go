package formatters

import (
	"github.com/crytic/forge-core/logging/colors"
	"regexp"
)

// TestCaseFormatter will colorize and update the format of a test case, its call sequence, and execution trace for console output
func TestCaseFormatter(fields map[string]any, msg string) string {
	var re *regexp.Regexp

	// Colorize [Execution Trace]
	re = regexp.MustCompile(executionTraceRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(`$1`, colors.BOLD))

	// Colorize [Call Sequence]
	re = regexp.MustCompile(callSequenceRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(`$1`, colors.BOLD))

	// Colorize [PASSED]
	re = regexp.MustCompile(passedRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, passedColor), colors.BOLD))

	// Colorize [FAILED]
	re = regexp.MustCompile(failedRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, failedColor), colors.BOLD))

	// Colorize [call]
	re = regexp.MustCompile(callRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, callColor), colors.BOLD))

	// Colorize [proxy call]
	re = regexp.MustCompile(proxyRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, proxyColor), colors.BOLD))

	// Colorize [creation]
	re = regexp.MustCompile(creationRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, creationColor), colors.BOLD))

	// Colorize [event]
	re = regexp.MustCompile(eventRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, eventColor), colors.BOLD))

	// Colorize [assertion failed]
	re = regexp.MustCompile(assertionFailedRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, assertionFailedColor), colors.BOLD))

	// Colorize [selfdestruct]
	re = regexp.MustCompile(selfDestructRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, selfDestructColor), colors.BOLD))

	// Colorize [return (%v)]
	re = regexp.MustCompile(returnRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, returnColor), colors.BOLD))

	// Colorize [revert (%v)]
	re = regexp.MustCompile(revertRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, revertColor), colors.BOLD))

	// Colorize [vm error (%v)]
	re = regexp.MustCompile(vmErrorRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(`$1`, vmErrorColor), colors.BOLD))

	// Colorize and replace '=>'
	re = regexp.MustCompile(doubleLeftArrowRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(colors.DOWNWARD_LEFT_ARROW, colors.GREEN), colors.BOLD))

	// Colorize and replace '->'
	re = regexp.MustCompile(leftArrowRegex)
	msg = re.ReplaceAllString(msg, colors.Colorize(colors.Colorize(colors.LEFT_ARROW, colors.GREEN), colors.BOLD))

	return msg
}
