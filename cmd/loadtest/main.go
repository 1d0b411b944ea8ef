// Command loadtest fires concurrent reservations at a running server and
// reports the success/conflict split. With more requests than available
// stock, the number of successes must equal the stock that was available.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"sync/atomic"
	"time"
)

const (
	baseURL       = "http://localhost:8002"
	sku           = "SKU-MONITOR-001"
	totalRequests = 50
	quantityEach  = 1
)

type reserveRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
	OrderID  string `json:"order_id"`
}

func main() {
	client := &http.Client{Timeout: 10 * time.Second}

	var success, conflict, other atomic.Int32
	var wg sync.WaitGroup

	start := time.Now()
	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			body, _ := json.Marshal(reserveRequest{
				SKU:      sku,
				Quantity: quantityEach,
				OrderID:  fmt.Sprintf("loadtest-%d", i),
			})
			resp, err := client.Post(baseURL+"/api/v1/inventory/reserve", "application/json", bytes.NewReader(body))
			if err != nil {
				log.Printf("request %d failed: %v", i, err)
				other.Add(1)
				return
			}
			resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
				success.Add(1)
			case http.StatusConflict:
				conflict.Add(1)
			default:
				other.Add(1)
			}
		}(i)
	}
	wg.Wait()
	elapsed := time.Since(start)

	fmt.Printf("requests:  %d\n", totalRequests)
	fmt.Printf("reserved:  %d\n", success.Load())
	fmt.Printf("rejected:  %d\n", conflict.Load())
	fmt.Printf("errors:    %d\n", other.Load())
	fmt.Printf("elapsed:   %s\n", elapsed)
}
