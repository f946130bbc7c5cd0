// Package teamname reserves unique, human-readable team names per event.
//
// A Service draws candidates from a lexicon.Lexicon and claims them through a
// Store, which is the only place uniqueness is enforced: at most one active
// record per (event, name). Reservations are leases. Unconfirmed ones are
// released by the next operation on the same event once ReservationTTL has
// passed; confirmed ones stay until released explicitly.
//
//	lex := lexicon.Builtin()
//	svc := teamname.New(lex, teamname.NewMemoryStore(),
//		teamname.WithTTL(5*time.Minute),
//		teamname.WithLogger(log),
//	)
//
//	res, err := svc.Reserve(ctx, eventID, teamname.WithDomains("animals"))
//	if err != nil { ... }
//	conf, ok, err := svc.Confirm(ctx, eventID, res.Token, res.Name)
//
// When every candidate is taken, Reserve issues a fallback name made of
// FallbackPrefix and random upper-case hex ("Gast-3F9A1") and reports
// Remaining as 0.
//
// Store implementations live in subpackages: pgstore, sqlitestore,
// redisstore and mongostore. MemoryStore serves tests and single-process
// deployments. storetest.Run checks any implementation against the contract.
package teamname
