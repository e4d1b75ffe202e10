package game

// Trigger is a semantic audio cue. The engine never touches playback; a
// frontend maps triggers to whatever sounds it has.
type Trigger string

const (
	TriggerClick        Trigger = "click"   // node transition
	TriggerConfirm      Trigger = "select"  // choice confirmed
	TriggerDanger       Trigger = "danger"  // low health or harmful event
	TriggerVictory      Trigger = "victory"
	TriggerDeath        Trigger = "death"
	TriggerAmbientStart Trigger = "ambient_start"
	TriggerAmbientStop  Trigger = "ambient_stop"
)

// AudioSink receives semantic triggers from the state machine.
type AudioSink interface {
	Play(Trigger)
}

// NopAudio discards every trigger.
type NopAudio struct{}

func (NopAudio) Play(Trigger) {}
