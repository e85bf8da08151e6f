// Package mcp implements the Model Context Protocol (MCP) server for the
// knowledge-base search engine.
//
// The MCP server exposes four tools to AI coding assistants:
//   - kb_add_entry: Add a new entry to the knowledge base
//   - kb_search: Search entries with relevance-ranked results
//   - kb_record_usage: Record whether an applied entry resolved the problem
//   - kb_status: Report knowledge-base size and per-category counts
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output,
// making it simple to integrate with any MCP-compatible client.
//
// # Basic Usage
//
// The MCP server is typically started via the binary:
//
//	kbsearch
//
// It then listens on stdin for MCP protocol messages and writes responses
// to stdout.
//
// # Tool: kb_search
//
// Search the knowledge base:
//
//	Request:
//	{
//	  "name": "kb_search",
//	  "arguments": {
//	    "query": "S0C7 abend in nightly batch",
//	    "limit": 10,
//	    "use_ai": true,
//	    "category": "COBOL",
//	    "include_highlights": true
//	  }
//	}
//
//	Response:
//	{
//	  "query": "S0C7 abend in nightly batch",
//	  "count": 2,
//	  "results": [
//	    {
//	      "entry_id": "kb-1",
//	      "title": "S0C7 data exception in COMPUTE",
//	      "score": "96.4",
//	      "match_type": "exact",
//	      "highlights": [
//	        {"field": "title", "start": 0, "end": 4, "text": "S0C7"}
//	      ]
//	    }
//	  ]
//	}
//
// When use_ai is requested but the semantic bridge is unavailable or fails,
// the search silently degrades to lexical matching; the response shape is
// identical either way.
//
// # Tool: kb_record_usage
//
// Feed outcomes back into ranking:
//
//	Request:
//	{
//	  "name": "kb_record_usage",
//	  "arguments": {"entry_id": "kb-1", "success": true}
//	}
//
//	Response:
//	{
//	  "recorded": true,
//	  "entry_id": "kb-1",
//	  "usage_count": 46,
//	  "success_count": 43,
//	  "failure_count": 3,
//	  "success_rate": "0.93"
//	}
//
// Usage counters raise an entry's score on subsequent searches, so solutions
// that keep working float toward the top.
//
// # MCP Client Configuration
//
// Configure in the client's MCP settings:
//
//	{
//	  "mcpServers": {
//	    "kbsearch": {
//	      "command": "/usr/local/bin/kbsearch",
//	      "env": {
//	        "KBSEARCH_BRIDGE_URL": "https://bridge.example.com/search"
//	      }
//	    }
//	  }
//	}
//
// # Error Handling
//
// The MCP server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32602,
//	    "message": "Invalid params",
//	    "data": {
//	      "param": "category",
//	      "reason": "missing or empty"
//	    }
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, engine)
//   - -32001: Entry not found
//   - -32004: Empty query
//   - -32005: Invalid category
//
// # Logging
//
// The MCP server logs to stderr (stdout is reserved for MCP protocol).
// Set the log level via environment:
//
//	KBSEARCH_LOG_LEVEL=debug kbsearch
package mcp
