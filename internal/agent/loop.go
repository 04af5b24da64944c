package agent

import (
	"github.com/neolite/zaica/internal/llmclient"
	"github.com/neolite/zaica/internal/model"
)

// defaultSteeringMessage is injected when loop detection fires and no
// OnLoopDetected hook overrides it, per spec §4.F.4.
const defaultSteeringMessage = "[SYSTEM WARNING: You appear to be stuck in a loop, repeating the same tool calls. Try a different approach, read the error messages carefully, or ask the user for guidance.]"

// Run drives one AgentLoop invocation, implementing the state machine of
// spec §4.F.1: CheckCancel, DrainSteering, LLMCall (with retry), branch on
// text vs tool_calls, loop detection, and the compaction hook. history
// must already contain at least [system, user]. toolNames restricts which
// tools are advertised to the LLM this run (execution of a returned call is
// gated by permission, not by toolNames); nil means the full set the
// Loop's registry exposes (chain steps pass their resolved tool_filter,
// SubAgent passes nil against its own five-tool registry).
func (l *Loop) Run(history *model.History, toolNames []string) Result {
	l.detector = newLoopDetector()
	var steering []string
	var totalPrompt, totalCompletion uint64

	for iteration := 0; ; iteration++ {
		if l.cancelled() {
			return Result{Status: StatusCancelled, Prompt: totalPrompt, Completion: totalCompletion}
		}

		for _, msg := range steering {
			history.Append(model.NewText(model.RoleUser, msg))
			if l.hooks.PersistUserText != nil {
				l.hooks.PersistUserText(msg)
			}
		}
		steering = nil

		if l.cfg.MaxIterations > 0 && iteration >= l.cfg.MaxIterations {
			return Result{Status: StatusHitLimit, Prompt: totalPrompt, Completion: totalCompletion}
		}

		result, httpErr, wasCancelled := l.callWithRetry(history, toolNames, iteration == 0)
		if wasCancelled {
			return Result{Status: StatusCancelled, Prompt: totalPrompt, Completion: totalCompletion}
		}
		if httpErr != nil {
			return Result{Status: StatusHTTPError, HTTPStatus: httpErr.Status, HTTPMsg: httpErr.Message, Prompt: totalPrompt, Completion: totalCompletion}
		}
		totalPrompt += result.Usage.Prompt
		totalCompletion += result.Usage.Completion

		if len(result.ToolCalls) == 0 {
			history.Append(model.NewText(model.RoleAssistant, result.Text))
			if l.hooks.PersistAssistant != nil {
				l.hooks.PersistAssistant(result.Text)
			}
			return Result{
				Status:     StatusReturnedText,
				Text:       result.Text,
				Prompt:     totalPrompt,
				Completion: totalCompletion,
			}
		}

		outcome := l.execTools(history, result.ToolCalls)
		if outcome.cancelled {
			return Result{Status: StatusCancelled, Prompt: totalPrompt, Completion: totalCompletion}
		}
		if outcome.permissionDenied {
			continue
		}

		for _, c := range result.ToolCalls {
			l.detector.Record(c.Name, c.Arguments)
		}
		if l.detector.Detect() {
			msg := defaultSteeringMessage
			if l.hooks.OnLoopDetected != nil {
				if custom := l.hooks.OnLoopDetected(); custom != "" {
					msg = custom
				}
			}
			steering = append(steering, msg)
		}

		if l.hooks.OnCompactionCheck != nil {
			l.hooks.OnCompactionCheck(NewHistoryView(history))
		}
	}
}

// callWithRetry runs one LLM call, retrying on http_error per the backoff
// schedule of spec §4.F.2. It returns (result, nil, false) on success,
// (zero, nil, true) if a cancel interrupted a retry sleep, or (zero,
// httpErr, false) once retries exhaust. On the first iteration, an
// exhausted retry removes the user message history just had appended, so
// the user can retype.
func (l *Loop) callWithRetry(history *model.History, toolNames []string, firstIteration bool) (llmclient.Result, *llmclient.HTTPError, bool) {
	schemas := l.toolSchemas(toolNames)
	onChunk := l.effectiveOnChunk()

	attempt := func() (llmclient.Result, *llmclient.HTTPError) {
		result, err := l.client.Stream(history, schemas, onChunk)
		if l.hooks.OnLLMEnd != nil {
			l.hooks.OnLLMEnd()
		}
		if result.HTTPError != nil {
			return result, result.HTTPError
		}
		if err != nil {
			return result, &llmclient.HTTPError{Message: err.Error()}
		}
		if l.hooks.OnTokens != nil {
			l.hooks.OnTokens(result.Usage.Prompt, result.Usage.Completion)
		}
		return result, nil
	}

	result, httpErr := attempt()
	if httpErr == nil {
		return result, nil, false
	}

	for _, delay := range retryDelays(httpErr.Status) {
		if sleepOrCancel(delay, l.cancelled) {
			return llmclient.Result{}, nil, true
		}
		result, httpErr = attempt()
		if httpErr == nil {
			return result, nil, false
		}
	}

	if l.hooks.OnHTTPError != nil {
		l.hooks.OnHTTPError(httpErr.Status, httpErr.Message)
	}
	if firstIteration {
		history.RemoveLast()
	}
	return llmclient.Result{}, httpErr, false
}

// toolSchemas filters the registry's definitions down to toolNames
// (nil means all of them), preserving registry order.
func (l *Loop) toolSchemas(toolNames []string) []llmclient.ToolSchema {
	allowed := nameSet(toolNames)
	defs := l.registry.Definitions()
	out := make([]llmclient.ToolSchema, 0, len(defs))
	for _, d := range defs {
		if allowed != nil && !allowed[d.Name] {
			continue
		}
		out = append(out, llmclient.ToolSchema{Name: d.Name, Description: d.Description, Parameters: d.Schema})
	}
	return out
}

func nameSet(names []string) map[string]bool {
	if names == nil {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// effectiveOnChunk discards streamed text in silent mode or when no
// display hook is wired, per spec §4.F.2.
func (l *Loop) effectiveOnChunk() llmclient.OnChunk {
	if l.cfg.Silent || l.hooks.OnChunk == nil {
		return func(string) {}
	}
	return l.hooks.OnChunk
}

func (l *Loop) cancelled() bool {
	return l.hooks.CancelRequested != nil && l.hooks.CancelRequested()
}
