// Package normalize converts raw MTProto message constructors into the
// neutral minigram message model. It resolves senders and chats through
// per-update lookup tables, classifies media payloads into exactly one
// typed variant, interprets service actions, and resolves reply chains
// through an insertion-order bounded cache with optional RPC fallback.
package normalize
