package sandbox

import "github.com/zaguiini/create-sandbox/internal/link"

// State is a point in the provisioning run. States only move forward.
type State int

const (
	StateIdle State = iota
	StateSourceAcquired
	StateValidated
	StateSandboxGenerated
	StateDependenciesInstalled
	StateBuilt
	StatePeerDependenciesInstalled
	StateLinked
	StateDone
)

var stateNames = [...]string{
	StateIdle:                      "Idle",
	StateSourceAcquired:            "SourceAcquired",
	StateValidated:                 "Validated",
	StateSandboxGenerated:          "SandboxGenerated",
	StateDependenciesInstalled:     "DependenciesInstalled",
	StateBuilt:                     "Built",
	StatePeerDependenciesInstalled: "PeerDependenciesInstalled",
	StateLinked:                    "Linked",
	StateDone:                      "Done",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Step names one unit of work the workflow reports to its Observer.
type Step string

const (
	StepAcquire           Step = "acquire"
	StepValidate          Step = "validate"
	StepGenerate          Step = "generate"
	StepInstall           Step = "install"
	StepBuild             Step = "build"
	StepPeerInstall       Step = "peer-install"
	StepRegisterSource    Step = Step(link.StepRegisterSource)
	StepRegisterFramework Step = Step(link.StepRegisterFramework)
	StepRegisterCompanion Step = Step(link.StepRegisterCompanion)
	StepConsume           Step = Step(link.StepConsume)
)

var stepTitles = map[Step]string{
	StepAcquire:           "Acquiring source",
	StepValidate:          "Inspecting package",
	StepGenerate:          "Generating sandbox app",
	StepInstall:           "Installing dependencies",
	StepBuild:             "Building package",
	StepPeerInstall:       "Installing peer dependencies",
	StepRegisterSource:    "Registering package link",
	StepRegisterFramework: "Registering react link",
	StepRegisterCompanion: "Registering react-dom link",
	StepConsume:           "Linking into sandbox",
}

// Title returns a human readable description of the step.
func (s Step) Title() string {
	if title, ok := stepTitles[s]; ok {
		return title
	}
	return string(s)
}
