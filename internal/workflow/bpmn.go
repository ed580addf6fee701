package workflow

import (
	"encoding/xml"
	"fmt"
	"strconv"
)

const (
	bpmnNamespace  = "http://www.omg.org/spec/BPMN/20100524/MODEL"
	zeebeNamespace = "http://camunda.org/schema/zeebe/1.0"
	xsiNamespace   = "http://www.w3.org/2001/XMLSchema-instance"

	errorHandlerID = "turn_failed"
)

type bpmnDefinitions struct {
	XMLName         xml.Name    `xml:"bpmn:definitions"`
	XMLNSBPMN       string      `xml:"xmlns:bpmn,attr"`
	XMLNSZeebe      string      `xml:"xmlns:zeebe,attr"`
	XMLNSXSI        string      `xml:"xmlns:xsi,attr"`
	ID              string      `xml:"id,attr"`
	TargetNamespace string      `xml:"targetNamespace,attr"`
	Process         bpmnProcess `xml:"bpmn:process"`
}

type bpmnProcess struct {
	ID            string             `xml:"id,attr"`
	Name          string             `xml:"name,attr"`
	IsExecutable  bool               `xml:"isExecutable,attr"`
	StartEvents   []bpmnEvent        `xml:"bpmn:startEvent"`
	ServiceTasks  []bpmnServiceTask  `xml:"bpmn:serviceTask"`
	Gateways      []bpmnGateway      `xml:"bpmn:exclusiveGateway"`
	EndEvents     []bpmnEvent        `xml:"bpmn:endEvent"`
	SequenceFlows []bpmnSequenceFlow `xml:"bpmn:sequenceFlow"`
	SubProcesses  []bpmnSubProcess   `xml:"bpmn:subProcess"`
}

type bpmnEvent struct {
	ID       string          `xml:"id,attr"`
	Name     string          `xml:"name,attr,omitempty"`
	Incoming []string        `xml:"bpmn:incoming"`
	Outgoing []string        `xml:"bpmn:outgoing"`
	Error    *bpmnErrorEvent `xml:"bpmn:errorEventDefinition"`
}

type bpmnErrorEvent struct {
	ID string `xml:"id,attr"`
}

type bpmnServiceTask struct {
	ID         string             `xml:"id,attr"`
	Name       string             `xml:"name,attr"`
	Extensions bpmnTaskExtensions `xml:"bpmn:extensionElements"`
	Incoming   []string           `xml:"bpmn:incoming"`
	Outgoing   []string           `xml:"bpmn:outgoing"`
}

type bpmnTaskExtensions struct {
	TaskDefinition zeebeTaskDefinition `xml:"zeebe:taskDefinition"`
}

type zeebeTaskDefinition struct {
	Type    string `xml:"type,attr"`
	Retries string `xml:"retries,attr"`
}

type bpmnGateway struct {
	ID       string   `xml:"id,attr"`
	Name     string   `xml:"name,attr"`
	Default  string   `xml:"default,attr,omitempty"`
	Incoming []string `xml:"bpmn:incoming"`
	Outgoing []string `xml:"bpmn:outgoing"`
}

type bpmnSequenceFlow struct {
	ID        string             `xml:"id,attr"`
	SourceRef string             `xml:"sourceRef,attr"`
	TargetRef string             `xml:"targetRef,attr"`
	Condition *bpmnConditionExpr `xml:"bpmn:conditionExpression"`
}

type bpmnConditionExpr struct {
	Type string `xml:"xsi:type,attr"`
	Body string `xml:",chardata"`
}

type bpmnSubProcess struct {
	ID               string             `xml:"id,attr"`
	Name             string             `xml:"name,attr"`
	TriggeredByEvent bool               `xml:"triggeredByEvent,attr"`
	StartEvents      []bpmnEvent        `xml:"bpmn:startEvent"`
	EndEvents        []bpmnEvent        `xml:"bpmn:endEvent"`
	SequenceFlows    []bpmnSequenceFlow `xml:"bpmn:sequenceFlow"`
}

// BPMN renders the graph as a Zeebe-deployable BPMN 2.0 document. A catch-all error event
// subprocess ends the instance as soon as any task throws.
func (g *Graph) BPMN() ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}

	incoming := make(map[string][]string)
	outgoing := make(map[string][]string)
	for _, e := range g.Edges {
		outgoing[e.From] = append(outgoing[e.From], e.ID)
		incoming[e.To] = append(incoming[e.To], e.ID)
	}

	proc := bpmnProcess{
		ID:           g.ProcessID,
		Name:         g.Name,
		IsExecutable: true,
	}

	defaults := make(map[string]string)
	for _, e := range g.Edges {
		if e.Default {
			defaults[e.From] = e.ID
		}
	}

	for _, n := range g.Nodes {
		switch n.Kind {
		case NodeStart:
			proc.StartEvents = append(proc.StartEvents, bpmnEvent{ID: n.ID, Name: n.Name, Outgoing: outgoing[n.ID]})
		case NodeEnd:
			proc.EndEvents = append(proc.EndEvents, bpmnEvent{ID: n.ID, Name: n.Name, Incoming: incoming[n.ID]})
		case NodeGateway:
			proc.Gateways = append(proc.Gateways, bpmnGateway{
				ID:       n.ID,
				Name:     n.Name,
				Default:  defaults[n.ID],
				Incoming: incoming[n.ID],
				Outgoing: outgoing[n.ID],
			})
		case NodeServiceTask:
			retries := n.Retries
			if retries < 1 {
				retries = 1
			}
			proc.ServiceTasks = append(proc.ServiceTasks, bpmnServiceTask{
				ID:   n.ID,
				Name: n.Name,
				Extensions: bpmnTaskExtensions{TaskDefinition: zeebeTaskDefinition{
					Type:    n.TaskType,
					Retries: strconv.Itoa(retries),
				}},
				Incoming: incoming[n.ID],
				Outgoing: outgoing[n.ID],
			})
		default:
			return nil, fmt.Errorf("unsupported node kind %q", n.Kind)
		}
	}

	for _, e := range g.Edges {
		flow := bpmnSequenceFlow{ID: e.ID, SourceRef: e.From, TargetRef: e.To}
		if e.Condition != "" {
			flow.Condition = &bpmnConditionExpr{
				Type: "bpmn:tFormalExpression",
				Body: fmt.Sprintf("=%s = %q", g.RouteVariable, e.Condition),
			}
		}
		proc.SequenceFlows = append(proc.SequenceFlows, flow)
	}

	proc.SubProcesses = []bpmnSubProcess{errorHandler()}

	doc := bpmnDefinitions{
		XMLNSBPMN:       bpmnNamespace,
		XMLNSZeebe:      zeebeNamespace,
		XMLNSXSI:        xsiNamespace,
		ID:              g.ProcessID + "_definitions",
		TargetNamespace: "http://bpmn.io/schema/bpmn",
		Process:         proc,
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal bpmn: %w", err)
	}
	return append([]byte(xml.Header), out...), nil
}

func errorHandler() bpmnSubProcess {
	startID := errorHandlerID + "_start"
	endID := errorHandlerID + "_end"
	flowID := "flow_" + errorHandlerID
	return bpmnSubProcess{
		ID:               errorHandlerID,
		Name:             "Turn failed",
		TriggeredByEvent: true,
		StartEvents: []bpmnEvent{{
			ID:       startID,
			Name:     "Worker error",
			Outgoing: []string{flowID},
			Error:    &bpmnErrorEvent{ID: startID + "_definition"},
		}},
		EndEvents:     []bpmnEvent{{ID: endID, Name: "Turn aborted", Incoming: []string{flowID}}},
		SequenceFlows: []bpmnSequenceFlow{{ID: flowID, SourceRef: startID, TargetRef: endID}},
	}
}
