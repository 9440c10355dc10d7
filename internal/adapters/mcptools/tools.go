// Package mcptools exposes the valuation service as Model Context Protocol
// tools so assistants can query valuations, weights and rankings.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	service "github.com/okian/scoutval/internal/app"
	"github.com/okian/scoutval/internal/domain/model"
	"github.com/okian/scoutval/internal/domain/player"
	"github.com/okian/scoutval/internal/domain/types"
	"github.com/okian/scoutval/internal/domain/valuation"
	"github.com/okian/scoutval/internal/domain/weights"
	"github.com/okian/scoutval/pkg/logger"
)

// Server identity reported to clients.
const (
	ServerName    = "scoutval-mcp"
	ServerVersion = "0.1.0"
)

// defaultLimit is used by leaderboard when no limit is given.
const defaultLimit = 10

var errArgument = errors.New("invalid argument")

// Dependencies is the service surface the tools call.
type Dependencies interface {
	Teams(ctx context.Context) ([]player.Team, error)
	TeamPlayers(ctx context.Context, teamID int) ([]player.Record, error)
	PlayerValuation(ctx context.Context, id int) (valuation.Valuation, error)
	WeightProfile(ctx context.Context, label string) (player.Category, weights.Profile, error)
	TopN(ctx context.Context, n int) ([]types.Entry, error)
	Rank(ctx context.Context, playerID int) (types.Entry, error)
	EnqueueRevaluation(ctx context.Context, playerIDs []int, reason string) (model.Job, error)
	EnqueueTeamRevaluation(ctx context.Context, teamID int, reason string) (model.Job, error)
}

// PlayerArgs selects one player.
type PlayerArgs struct {
	PlayerID int `json:"player_id" jsonschema:"Player id (required)"`
}

// TeamArgs selects one team.
type TeamArgs struct {
	TeamID int `json:"team_id" jsonschema:"Team id (required)"`
}

// CategoryArgs selects a weight profile.
type CategoryArgs struct {
	Category string `json:"category" jsonschema:"Attacker, Midfielder, Defender or Goalkeeper (aliases: forward, striker, winger, keeper)"`
}

// LeaderboardArgs bounds the leaderboard.
type LeaderboardArgs struct {
	Limit int `json:"limit" jsonschema:"Number of entries (default 10)"`
}

// RevaluationArgs names the players to revalue, directly or by team.
type RevaluationArgs struct {
	PlayerIDs []int  `json:"player_ids,omitempty" jsonschema:"Player ids to revalue"`
	TeamID    int    `json:"team_id,omitempty" jsonschema:"Revalue every player of this team"`
	Reason    string `json:"reason,omitempty" jsonschema:"Free-form reason recorded with the job"`
}

// NoArgs is used by tools without parameters.
type NoArgs struct{}

// Tools binds MCP handlers to a service.
type Tools struct {
	deps Dependencies
	log  logger.Logger
}

// New creates the tool set.
func New(deps Dependencies) *Tools {
	return &Tools{deps: deps, log: logger.Get().Named("mcp")}
}

// NewServer builds an MCP server with every tool registered.
func NewServer(deps Dependencies) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: ServerName, Version: ServerVersion}, nil)
	New(deps).Register(server)
	return server
}

// Register adds the tools to server.
func (t *Tools) Register(server *mcp.Server) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_valuation",
		Description: "Compute the weighted valuation of a player: per-section scores, per-metric breakdown and the total",
	}, t.PlayerValuation)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "weight_profile",
		Description: "Show the current metric weights of a player category",
	}, t.WeightProfile)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "leaderboard",
		Description: "Top valued players, best first",
	}, t.Leaderboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_rank",
		Description: "Leaderboard position of a previously valued player",
	}, t.PlayerRank)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_teams",
		Description: "List the teams known to the service",
	}, t.ListTeams)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "team_players",
		Description: "List the players of a team",
	}, t.TeamPlayers)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "enqueue_revaluation",
		Description: "Queue players (or a whole team) for asynchronous revaluation",
	}, t.EnqueueRevaluation)
}

func (t *Tools) PlayerValuation(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if args.PlayerID <= 0 {
		return toolError(fmt.Errorf("%w: player_id is required", errArgument)), nil, nil
	}
	v, err := t.deps.PlayerValuation(ctx, args.PlayerID)
	if err != nil {
		return t.failed(ctx, "player_valuation", err), nil, nil
	}
	return toolJSON(v), nil, nil
}

func (t *Tools) WeightProfile(ctx context.Context, _ *mcp.CallToolRequest, args CategoryArgs) (*mcp.CallToolResult, any, error) {
	cat, profile, err := t.deps.WeightProfile(ctx, args.Category)
	if err != nil {
		return t.failed(ctx, "weight_profile", err), nil, nil
	}
	return toolJSON(map[string]any{"category": cat, "profile": profile}), nil, nil
}

func (t *Tools) Leaderboard(ctx context.Context, _ *mcp.CallToolRequest, args LeaderboardArgs) (*mcp.CallToolResult, any, error) {
	limit := args.Limit
	if limit == 0 {
		limit = defaultLimit
	}
	entries, err := t.deps.TopN(ctx, limit)
	if err != nil {
		return t.failed(ctx, "leaderboard", err), nil, nil
	}
	return toolJSON(entries), nil, nil
}

func (t *Tools) PlayerRank(ctx context.Context, _ *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	entry, err := t.deps.Rank(ctx, args.PlayerID)
	if err != nil {
		return t.failed(ctx, "player_rank", err), nil, nil
	}
	return toolJSON(entry), nil, nil
}

func (t *Tools) ListTeams(ctx context.Context, _ *mcp.CallToolRequest, _ NoArgs) (*mcp.CallToolResult, any, error) {
	teams, err := t.deps.Teams(ctx)
	if err != nil {
		return t.failed(ctx, "list_teams", err), nil, nil
	}
	return toolJSON(teams), nil, nil
}

func (t *Tools) TeamPlayers(ctx context.Context, _ *mcp.CallToolRequest, args TeamArgs) (*mcp.CallToolResult, any, error) {
	if args.TeamID <= 0 {
		return toolError(fmt.Errorf("%w: team_id is required", errArgument)), nil, nil
	}
	players, err := t.deps.TeamPlayers(ctx, args.TeamID)
	if err != nil {
		return t.failed(ctx, "team_players", err), nil, nil
	}
	return toolJSON(players), nil, nil
}

func (t *Tools) EnqueueRevaluation(ctx context.Context, _ *mcp.CallToolRequest, args RevaluationArgs) (*mcp.CallToolResult, any, error) {
	reason := args.Reason
	if reason == "" {
		reason = model.ReasonManual
	}

	var (
		job model.Job
		err error
	)
	switch {
	case args.TeamID > 0 && len(args.PlayerIDs) > 0:
		return toolError(fmt.Errorf("%w: give player_ids or team_id, not both", errArgument)), nil, nil
	case args.TeamID > 0:
		job, err = t.deps.EnqueueTeamRevaluation(ctx, args.TeamID, reason)
	case len(args.PlayerIDs) > 0:
		job, err = t.deps.EnqueueRevaluation(ctx, args.PlayerIDs, reason)
	default:
		return toolError(fmt.Errorf("%w: player_ids or team_id is required", errArgument)), nil, nil
	}
	if err != nil {
		return t.failed(ctx, "enqueue_revaluation", err), nil, nil
	}
	return toolJSON(job), nil, nil
}

// failed converts a service error into a tool error carrying its kind.
func (t *Tools) failed(ctx context.Context, tool string, err error) *mcp.CallToolResult {
	kind := service.ErrorKind(err)
	if kind == service.KindInternal || kind == service.KindUpstream {
		t.log.Error(ctx, "tool failed", logger.String("tool", tool), logger.String("kind", kind), logger.Error(err))
	}
	return toolError(fmt.Errorf("%s: %w", kind, err))
}

func toolJSON(v any) *mcp.CallToolResult {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err)
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
