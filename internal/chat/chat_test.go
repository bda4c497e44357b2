package chat

import "testing"

func TestAggregator_FirstUpdateSeedsWithoutChanges(t *testing.T) {
	agg := NewAggregator()
	changes := agg.UpdateDynamicSections([]interface{}{"a", 1, true})
	if changes != nil {
		t.Errorf("expected nil changes on bootstrap turn, got %v", changes)
	}
}

func TestAggregator_UpdateDynamicSections_DetectsChanges(t *testing.T) {
	agg := NewAggregator()
	agg.UpdateDynamicSections([]interface{}{"a", 1, true})

	changes := agg.UpdateDynamicSections([]interface{}{"a", 2, true})
	if len(changes) != 1 || changes[0].Index != 1 || changes[0].Data != 2 {
		t.Errorf("expected single change at index 1 with data 2, got %+v", changes)
	}
}

func TestAggregator_FlushMaterializesAutoReplyAndResets(t *testing.T) {
	agg := NewAggregator()
	agg.SetErrorReport("some error")
	agg.AddCommandOutput("add_criteria", map[string]string{"criteria": "x"}, "ok")
	agg.AddInternalMessage("hello", "Sibling")
	agg.RequestConfirmation("proceed?")

	reply := agg.Flush(nil)
	if reply.ErrorReport != "some error" {
		t.Errorf("ErrorReport = %q", reply.ErrorReport)
	}
	if len(reply.CommandOutputs) != 1 || reply.CommandOutputs[0].Name != "add_criteria" {
		t.Errorf("CommandOutputs = %+v", reply.CommandOutputs)
	}
	if len(reply.InternalMessages) != 1 || reply.InternalMessages[0].Text != "hello" {
		t.Errorf("InternalMessages = %+v", reply.InternalMessages)
	}
	if reply.ConfirmationNeeded != "proceed?" {
		t.Errorf("ConfirmationNeeded = %q", reply.ConfirmationNeeded)
	}

	// Pending state should now be clear.
	second := agg.Flush(nil)
	if !second.IsEmpty() {
		t.Errorf("expected empty AutoReply after flush reset, got %+v", second)
	}
}

func TestAggregator_EmptyFlushIsNotAppendedToTranscript(t *testing.T) {
	agg := NewAggregator()
	agg.AppendUserMessage("hi")
	agg.Flush(nil)

	transcript := agg.Transcript()
	if len(transcript) != 1 {
		t.Errorf("expected only the user message in transcript, got %d entries", len(transcript))
	}
}

func TestAggregator_NonEmptyFlushAppendsToTranscript(t *testing.T) {
	agg := NewAggregator()
	agg.AppendUserMessage("hi")
	agg.SetErrorReport("boom")
	agg.Flush(nil)

	transcript := agg.Transcript()
	if len(transcript) != 2 {
		t.Fatalf("expected 2 transcript entries, got %d", len(transcript))
	}
	if transcript[1].AutoReply == nil || transcript[1].AutoReply.ErrorReport != "boom" {
		t.Errorf("expected second entry to be the AutoReply, got %+v", transcript[1])
	}
}

func TestRegistry_ForCreatesLazilyAndReuses(t *testing.T) {
	reg := NewRegistry()
	a := reg.For("Root")
	b := reg.For("Root")
	if a != b {
		t.Errorf("expected the same aggregator instance for repeated lookups")
	}
}

func TestRegistry_DeliverRoutesInternalMessage(t *testing.T) {
	reg := NewRegistry()
	reg.Deliver("Parent", "child finished", "Child")

	reply := reg.For("Parent").Flush(nil)
	if len(reply.InternalMessages) != 1 || reply.InternalMessages[0].OriginTitle != "Child" {
		t.Errorf("expected delivered internal message, got %+v", reply.InternalMessages)
	}
}
