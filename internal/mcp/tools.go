package mcp

import "github.com/mark3labs/mcp-go/mcp"

var formatOption = mcp.WithString("format",
	mcp.Description("Result format (default json)"),
	mcp.Enum("json", "markdown"),
)

// analyzeClaimTool defines the analyze_claim MCP tool.
var analyzeClaimTool = mcp.NewTool("analyze_claim",
	mcp.WithDescription("Assess a single ESG or sustainability claim for specificity, verifiability and greenwashing risk."),
	mcp.WithString("claim_text",
		mcp.Required(),
		mcp.Description("The claim as stated by the company"),
	),
	mcp.WithString("company_name",
		mcp.Description("Company making the claim"),
	),
	mcp.WithString("sector",
		mcp.Description("Industry sector of the company"),
	),
	formatOption,
)

// analyzeClaimsTool defines the analyze_claims MCP tool.
var analyzeClaimsTool = mcp.NewTool("analyze_claims",
	mcp.WithDescription("Assess a set of claims from one report and find contradictions, duplicates, inconsistencies and supporting claims between them."),
	mcp.WithArray("claims",
		mcp.Required(),
		mcp.Description("Claims to analyze. Ids are optional and default to claim-<n>."),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"id":   map[string]any{"type": "string"},
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		}),
	),
	mcp.WithString("company_name",
		mcp.Description("Company that published the report"),
	),
	mcp.WithString("sector",
		mcp.Description("Industry sector of the company"),
	),
	formatOption,
)
