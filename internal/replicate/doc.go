/*
Replicate mirrors one master account's order flow onto child accounts.

# Module
  - classifier: decides placement / cancellation / no action per order
  - sizing: lot-rounded child quantities
  - cycle driver: one pass per poll interval across all enabled setups

# Source
  - master order book snapshots, polled through the session directory

# Produce
  - at most one placement per (master order, child) pair
  - at most one cancellation fan-out per cancelled master order

State is per setup and in-memory only; restarting the process forgets
what was already replicated.
*/
package replicate
