package redisstore

import "github.com/redis/go-redis/v9"

// All keys of one event share a {hash tag}, so the scripts stay within a
// single cluster slot even though they derive record keys from tokens.
// A positive retention_ms puts a PEXPIRE on every record the script releases.

// KEYS: active, record, pending, history, seq
// ARGV: name, token, id, lexicon_version, fallback, reserved_at
var insertScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[2]) == 1 then
	return 0
end
if redis.call('HSETNX', KEYS[1], ARGV[1], ARGV[2]) == 0 then
	return 0
end
redis.call('HSET', KEYS[2],
	'id', ARGV[3],
	'name', ARGV[1],
	'lexicon_version', ARGV[4],
	'fallback', ARGV[5],
	'reserved_at', ARGV[6])
redis.call('ZADD', KEYS[3], ARGV[6], ARGV[2])
local seq = redis.call('INCR', KEYS[5])
redis.call('ZADD', KEYS[4], ARGV[6], string.format('%020d:%s', seq, ARGV[2]))
return 1
`)

// Releases every pending (active, unassigned) record scored at or below
// ARGV[1]; "+inf" releases all of them.
// KEYS: active, pending
// ARGV: max_score, released_at, record_key_prefix, retention_ms
var releasePendingScript = redis.NewScript(`
local tokens = redis.call('ZRANGEBYSCORE', KEYS[2], '-inf', ARGV[1])
local ttl = tonumber(ARGV[4])
for _, token in ipairs(tokens) do
	local rec = ARGV[3] .. token
	local name = redis.call('HGET', rec, 'name')
	redis.call('HSET', rec, 'released_at', ARGV[2])
	if ttl > 0 then
		redis.call('PEXPIRE', rec, ttl)
	end
	if name and redis.call('HGET', KEYS[1], name) == token then
		redis.call('HDEL', KEYS[1], name)
	end
	redis.call('ZREM', KEYS[2], token)
end
return #tokens
`)

// KEYS: record, pending
// ARGV: token, assigned_at
var assignScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 or redis.call('HEXISTS', KEYS[1], 'released_at') == 1 then
	return 0
end
if redis.call('HEXISTS', KEYS[1], 'assigned_at') == 0 then
	redis.call('HSET', KEYS[1], 'assigned_at', ARGV[2])
	redis.call('ZREM', KEYS[2], ARGV[1])
end
return 1
`)

// KEYS: active, record, pending
// ARGV: token, released_at, retention_ms
var releaseTokenScript = redis.NewScript(`
local name = redis.call('HGET', KEYS[2], 'name')
if not name or redis.call('HEXISTS', KEYS[2], 'released_at') == 1 then
	return 0
end
redis.call('HSET', KEYS[2], 'released_at', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[2], ARGV[3])
end
if redis.call('HGET', KEYS[1], name) == ARGV[1] then
	redis.call('HDEL', KEYS[1], name)
end
redis.call('ZREM', KEYS[3], ARGV[1])
return 1
`)

// KEYS: active, pending
// ARGV: name, released_at, record_key_prefix, retention_ms
var releaseNameScript = redis.NewScript(`
local token = redis.call('HGET', KEYS[1], ARGV[1])
if not token then
	return 0
end
redis.call('HSET', ARGV[3] .. token, 'released_at', ARGV[2])
if tonumber(ARGV[4]) > 0 then
	redis.call('PEXPIRE', ARGV[3] .. token, ARGV[4])
end
redis.call('HDEL', KEYS[1], ARGV[1])
redis.call('ZREM', KEYS[2], token)
return 1
`)
