package orderbot

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/Chative-Food-Ordering-Assistant/agent/nodes"
)

func (m *Machine) compileRoundTripGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode("validate_utterance",
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
			return nodex.ValidateUtterance(in, m.now)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node validate_utterance: %w", err)
	}

	if err := graph.AddLambdaNode("converse",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Converse(ctx, in, m.conversation)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node converse: %w", err)
	}

	if err := graph.AddLambdaNode("publish_reply",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.PublishReply(ctx, in, m.appendBotReply)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node publish_reply: %w", err)
	}

	if err := graph.AddLambdaNode("recommend",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.Recommend(ctx, in, m.recommender)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node recommend: %w", err)
	}

	if err := graph.AddLambdaNode("finish_round_trip",
		compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
			return nodex.FinishRoundTrip(in)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node finish_round_trip: %w", err)
	}

	edges := [][2]string{
		{compose.START, "validate_utterance"},
		{"validate_utterance", "converse"},
		{"converse", "publish_reply"},
		{"publish_reply", "recommend"},
		{"recommend", "finish_round_trip"},
		{"finish_round_trip", compose.END},
	}

	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orderbot.send_message"))
	if err != nil {
		return nil, fmt.Errorf("compile send_message graph: %w", err)
	}
	return runner, nil
}
