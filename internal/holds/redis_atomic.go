package holds

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisLedger is the production Ledger. Every mutation runs as a Lua
// script so multi-item claims are atomic, and item keys carry the hold
// TTL so Redis reclaims lapsed claims on its own.
type RedisLedger struct {
	redis *redis.Client
}

func NewRedisLedger(redisClient *redis.Client) *RedisLedger {
	return &RedisLedger{
		redis: redisClient,
	}
}

// Lua script for atomic all-or-nothing item reservation
const luaReserveItems = `
-- KEYS[1] = hold_id
-- ARGV[1] = user_id
-- ARGV[2] = event_id
-- ARGV[3] = ttl_seconds
-- ARGV[4..N] = item_ids

local hold_id = KEYS[1]
local user_id = ARGV[1]
local event_id = ARGV[2]
local ttl = tonumber(ARGV[3])

local hold_key = "hold:" .. hold_id
local hold_items_key = "hold_items:" .. hold_id
local user_holds_key = "user_holds:" .. user_id

-- Adding to an existing hold keeps its deadline
local hold_exists = redis.call("EXISTS", hold_key) == 1
if hold_exists then
    local status = redis.call("HGET", hold_key, "status")
    if status ~= "ACTIVE" then
        return {0, "invalid_state"}
    end
    local remaining = redis.call("TTL", hold_key)
    if remaining > 0 then
        ttl = remaining
    end
end

-- Collect every blocked item before claiming anything
local blocked = {}
for i = 4, #ARGV do
    local item_id = ARGV[i]
    local owner = redis.call("GET", "item_hold:" .. item_id)
    if owner and owner ~= hold_id then
        blocked[#blocked + 1] = item_id
    end
end

if #blocked > 0 then
    local result = {0, "conflict"}
    for i = 1, #blocked do
        result[#result + 1] = blocked[i]
    end
    return result
end

if not hold_exists then
    local now = redis.call("TIME")[1]
    redis.call("HMSET", hold_key,
        "user_id", user_id,
        "event_id", event_id,
        "status", "ACTIVE",
        "created_at", now,
        "expires_at", now + ttl
    )
    redis.call("EXPIRE", hold_key, ttl)
end

-- Claim items under the hold's remaining lifetime
for i = 4, #ARGV do
    local item_id = ARGV[i]
    redis.call("SETEX", "item_hold:" .. item_id, ttl, hold_id)
    redis.call("SADD", hold_items_key, item_id)
end
redis.call("EXPIRE", hold_items_key, ttl)

redis.call("SADD", user_holds_key, hold_id)
redis.call("EXPIRE", user_holds_key, ttl)

return {1, "success"}
`

// Lua script for removing individual items from an active hold
const luaReleaseItems = `
-- KEYS[1] = hold_id
-- ARGV[1..N] = item_ids

local hold_id = KEYS[1]
local hold_key = "hold:" .. hold_id
local hold_items_key = "hold_items:" .. hold_id

if redis.call("EXISTS", hold_key) == 0 then
    return {0, "hold_not_found"}
end

local status = redis.call("HGET", hold_key, "status")
if status ~= "ACTIVE" then
    return {0, "invalid_state"}
end

local removed = 0
for i = 1, #ARGV do
    local item_id = ARGV[i]
    local item_key = "item_hold:" .. item_id
    if redis.call("GET", item_key) == hold_id then
        redis.call("DEL", item_key)
        redis.call("SREM", hold_items_key, item_id)
        removed = removed + 1
    end
end

return {1, removed}
`

// Lua script for releasing a whole hold
const luaReleaseHold = `
-- KEYS[1] = hold_id
local hold_id = KEYS[1]

local hold_key = "hold:" .. hold_id
local hold_items_key = "hold_items:" .. hold_id

local hold_data = redis.call("HGETALL", hold_key)
if #hold_data == 0 then
    return {0, "hold_not_found"}
end

local user_id = nil
for i = 1, #hold_data, 2 do
    if hold_data[i] == "user_id" then
        user_id = hold_data[i + 1]
        break
    end
end

local item_ids = redis.call("SMEMBERS", hold_items_key)
for i = 1, #item_ids do
    redis.call("DEL", "item_hold:" .. item_ids[i])
end

if user_id then
    redis.call("SREM", "user_holds:" .. user_id, hold_id)
end

redis.call("DEL", hold_key)
redis.call("DEL", hold_items_key)

return {1, #item_ids}
`

// Lua script for pushing a hold's deadline out
const luaRenewHold = `
-- KEYS[1] = hold_id
-- ARGV[1] = ttl_seconds

local hold_id = KEYS[1]
local ttl = tonumber(ARGV[1])

local hold_key = "hold:" .. hold_id
local hold_items_key = "hold_items:" .. hold_id

if redis.call("EXISTS", hold_key) == 0 then
    return {0, "hold_not_found"}
end

local status = redis.call("HGET", hold_key, "status")
if status ~= "ACTIVE" then
    return {0, "invalid_state"}
end

local now = redis.call("TIME")[1]
redis.call("HSET", hold_key, "expires_at", now + ttl)
redis.call("EXPIRE", hold_key, ttl)
redis.call("EXPIRE", hold_items_key, ttl)

local item_ids = redis.call("SMEMBERS", hold_items_key)
for i = 1, #item_ids do
    redis.call("EXPIRE", "item_hold:" .. item_ids[i], ttl)
end

return {1, "success"}
`

// Lua script for confirming a hold. Confirmed holds are frozen: the
// TTLs come off so the claims survive until the booking settles.
const luaConfirmHold = `
-- KEYS[1] = hold_id
local hold_id = KEYS[1]

local hold_key = "hold:" .. hold_id
local hold_items_key = "hold_items:" .. hold_id

if redis.call("EXISTS", hold_key) == 0 then
    return {0, "hold_not_found"}
end

local status = redis.call("HGET", hold_key, "status")
if status == "CONFIRMED" then
    return {1, "already_confirmed"}
end
if status ~= "ACTIVE" then
    return {0, "invalid_state"}
end

local item_ids = redis.call("SMEMBERS", hold_items_key)
if #item_ids == 0 then
    return {0, "empty_hold"}
end

redis.call("HSET", hold_key, "status", "CONFIRMED")
redis.call("PERSIST", hold_key)
redis.call("PERSIST", hold_items_key)
for i = 1, #item_ids do
    redis.call("PERSIST", "item_hold:" .. item_ids[i])
end

return {1, "confirmed"}
`

func (r *RedisLedger) TryReserve(ctx context.Context, holdID, userID, eventID string, itemIDs []string, ttl time.Duration) (*Hold, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	keys := []string{holdID}
	args := []interface{}{
		userID,
		eventID,
		strconv.Itoa(int(ttl.Seconds())),
	}
	for _, itemID := range itemIDs {
		args = append(args, itemID)
	}

	resultArray, err := r.eval(ctx, luaReserveItems, keys, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute atomic item reserve: %w", err)
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in Lua script result")
	}

	if success == 0 {
		reason, _ := resultArray[1].(string)
		switch reason {
		case "conflict":
			conflict := &Conflict{}
			for _, v := range resultArray[2:] {
				if id, ok := v.(string); ok {
					conflict.BlockedItemIDs = append(conflict.BlockedItemIDs, id)
				}
			}
			return nil, conflict
		case "invalid_state":
			return nil, ErrInvalidTransition
		default:
			return nil, fmt.Errorf("failed to reserve items: %s", reason)
		}
	}

	return r.Get(ctx, holdID)
}

func (r *RedisLedger) Release(ctx context.Context, holdID string, itemIDs []string) (*Hold, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	args := make([]interface{}, 0, len(itemIDs))
	for _, itemID := range itemIDs {
		args = append(args, itemID)
	}

	resultArray, err := r.eval(ctx, luaReleaseItems, []string{holdID}, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute atomic item release: %w", err)
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 0 {
		reason, _ := resultArray[1].(string)
		switch reason {
		case "hold_not_found":
			return nil, ErrHoldNotFound
		case "invalid_state":
			return nil, ErrInvalidTransition
		default:
			return nil, fmt.Errorf("failed to release items: %s", reason)
		}
	}

	return r.Get(ctx, holdID)
}

func (r *RedisLedger) ReleaseAll(ctx context.Context, holdID string) error {
	if r.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	resultArray, err := r.eval(ctx, luaReleaseHold, []string{holdID})
	if err != nil {
		return fmt.Errorf("failed to execute atomic hold release: %w", err)
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 0 {
		reason, _ := resultArray[1].(string)
		if reason == "hold_not_found" {
			return ErrHoldNotFound
		}
		return fmt.Errorf("failed to release hold: %s", reason)
	}

	return nil
}

func (r *RedisLedger) Renew(ctx context.Context, holdID string, ttl time.Duration) (*Hold, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	resultArray, err := r.eval(ctx, luaRenewHold, []string{holdID}, strconv.Itoa(int(ttl.Seconds())))
	if err != nil {
		return nil, fmt.Errorf("failed to execute atomic hold renew: %w", err)
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 0 {
		reason, _ := resultArray[1].(string)
		switch reason {
		case "hold_not_found":
			// Redis reclaims lapsed holds natively, a missing hold was expired
			return nil, ErrHoldExpired
		case "invalid_state":
			return nil, ErrInvalidTransition
		default:
			return nil, fmt.Errorf("failed to renew hold: %s", reason)
		}
	}

	return r.Get(ctx, holdID)
}

func (r *RedisLedger) MarkConfirmed(ctx context.Context, holdID string) (*Hold, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	resultArray, err := r.eval(ctx, luaConfirmHold, []string{holdID})
	if err != nil {
		return nil, fmt.Errorf("failed to execute atomic hold confirm: %w", err)
	}

	success, ok := resultArray[0].(int64)
	if !ok {
		return nil, fmt.Errorf("invalid success flag in Lua script result")
	}
	if success == 0 {
		reason, _ := resultArray[1].(string)
		switch reason {
		case "hold_not_found":
			return nil, ErrHoldExpired
		case "invalid_state", "empty_hold":
			return nil, ErrInvalidTransition
		default:
			return nil, fmt.Errorf("failed to confirm hold: %s", reason)
		}
	}

	return r.Get(ctx, holdID)
}

func (r *RedisLedger) Get(ctx context.Context, holdID string) (*Hold, error) {
	if r.redis == nil {
		return nil, fmt.Errorf("redis client not available")
	}

	holdKey := fmt.Sprintf("hold:%s", holdID)
	data, err := r.redis.HGetAll(ctx, holdKey).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hold details: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrHoldNotFound
	}

	itemIDs, err := r.redis.SMembers(ctx, fmt.Sprintf("hold_items:%s", holdID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get hold items: %w", err)
	}

	hold := &Hold{
		ID:      holdID,
		UserID:  data["user_id"],
		EventID: data["event_id"],
		ItemIDs: itemIDs,
		Status:  Status(data["status"]),
	}
	if createdAt, err := strconv.ParseInt(data["created_at"], 10, 64); err == nil {
		hold.CreatedAt = time.Unix(createdAt, 0).UTC()
	}
	if expiresAt, err := strconv.ParseInt(data["expires_at"], 10, 64); err == nil {
		hold.ExpiresAt = time.Unix(expiresAt, 0).UTC()
	}

	return hold, nil
}

func (r *RedisLedger) IsHeld(ctx context.Context, itemID string) (bool, error) {
	if r.redis == nil {
		return false, fmt.Errorf("redis client not available")
	}

	exists, err := r.redis.Exists(ctx, fmt.Sprintf("item_hold:%s", itemID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check item hold: %w", err)
	}
	return exists > 0, nil
}

// SweepExpired prunes user_holds index entries whose hold keys Redis
// has already reclaimed through TTL. Item claims expire on their own.
func (r *RedisLedger) SweepExpired(ctx context.Context) (int, error) {
	if r.redis == nil {
		return 0, fmt.Errorf("redis client not available")
	}

	pruned := 0
	iter := r.redis.Scan(ctx, 0, "user_holds:*", 100).Iterator()
	for iter.Next(ctx) {
		indexKey := iter.Val()
		holdIDs, err := r.redis.SMembers(ctx, indexKey).Result()
		if err != nil {
			continue
		}
		for _, holdID := range holdIDs {
			exists, err := r.redis.Exists(ctx, fmt.Sprintf("hold:%s", holdID)).Result()
			if err != nil || exists > 0 {
				continue
			}
			if err := r.redis.SRem(ctx, indexKey, holdID).Err(); err == nil {
				pruned++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return pruned, fmt.Errorf("failed to scan hold index: %w", err)
	}

	return pruned, nil
}

// eval executes a Lua script with EvalSha first for performance
func (r *RedisLedger) eval(ctx context.Context, script string, keys []string, args ...interface{}) ([]interface{}, error) {
	result, err := r.redis.EvalSha(ctx, script, keys, args...).Result()
	if err != nil {
		// If script is not loaded, try to load and execute
		result, err = r.redis.Eval(ctx, script, keys, args...).Result()
		if err != nil {
			return nil, err
		}
	}

	resultArray, ok := result.([]interface{})
	if !ok || len(resultArray) < 2 {
		return nil, fmt.Errorf("unexpected result format from Lua script")
	}
	return resultArray, nil
}

// PreloadScripts loads Lua scripts into Redis for better performance
func (r *RedisLedger) PreloadScripts(ctx context.Context) error {
	if r.redis == nil {
		return fmt.Errorf("redis client not available")
	}

	scripts := []string{
		luaReserveItems,
		luaReleaseItems,
		luaReleaseHold,
		luaRenewHold,
		luaConfirmHold,
	}
	for _, script := range scripts {
		if _, err := r.redis.ScriptLoad(ctx, script).Result(); err != nil {
			return fmt.Errorf("failed to load hold script: %w", err)
		}
	}

	return nil
}
