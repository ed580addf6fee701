package workflow

import (
	"context"

	"frontdesk-workers/internal/common/camunda"

	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
)

// Deployment describes the deployed process definition.
type Deployment struct {
	Key                  int64
	BPMNProcessID        string
	Version              int32
	ProcessDefinitionKey int64
}

// Deploy renders g and deploys it as <processId>.bpmn. Deploying an unchanged resource keeps the
// current version.
func Deploy(ctx context.Context, client zbc.Client, g *Graph) (*Deployment, error) {
	resource, err := g.BPMN()
	if err != nil {
		return nil, err
	}

	resp, err := client.NewDeployResourceCommand().
		AddResource(resource, g.ProcessID+".bpmn").
		Send(ctx)
	if err != nil {
		return nil, camunda.MapError(err, "deploy")
	}

	d := &Deployment{Key: resp.GetKey(), BPMNProcessID: g.ProcessID}
	for _, dep := range resp.GetDeployments() {
		if p := dep.GetProcess(); p != nil && p.GetBpmnProcessId() == g.ProcessID {
			d.Version = p.GetVersion()
			d.ProcessDefinitionKey = p.GetProcessDefinitionKey()
		}
	}
	return d, nil
}
