/*
Package runner implements the cooperative polling loop that drives a console.

It has the shape of a device main loop: every iteration feeds the bytes that arrived
since the previous one, applies finished background jobs and then services sibling duties
(display refresh, radio maintenance, metrics). Nothing inside an iteration blocks, so duties
keep running while a scan is in flight.

Input is read by a pump goroutine into a ring buffer; the loop only ever drains that buffer.

# Usage

	r := runner.New(c, os.Stdin,
		runner.WithInterval(10*time.Millisecond),
		runner.WithDuty(func(ctx context.Context) { display.Refresh() }),
	)

	if err := r.Run(ctx); err != nil {
		log.Fatal(err)
	}
*/
package runner
