package core

import (
	"fmt"

	gitlab "gitlab.com/gitlab-org/api/client-go"
)

// EventFromMergeEvent transforms a raw GitLab merge request webhook payload
// into the internal MergeRequestEvent. It acts as an anti-corruption layer:
// payloads missing a stable merge request identity are rejected here, so
// downstream components can rely on the event being well-formed. The change
// set is not carried by the webhook; the orchestrator fetches it from the
// API when Files is nil.
func EventFromMergeEvent(event *gitlab.MergeEvent) (*MergeRequestEvent, error) {
	if event == nil {
		return nil, fmt.Errorf("%w: merge event is nil", ErrMalformedInput)
	}

	projectID := int64(event.ObjectAttributes.TargetProjectID)
	if projectID == 0 {
		projectID = int64(event.Project.ID)
	}

	e := &MergeRequestEvent{
		ProjectID:       projectID,
		MergeRequestIID: int64(event.ObjectAttributes.IID),
		Action:          MergeRequestAction(event.ObjectAttributes.Action),
	}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}
