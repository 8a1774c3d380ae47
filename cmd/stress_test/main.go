package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Drives a running server with concurrent placements followed by
// concurrent acceptances against one seller's stock, to observe the
// all-or-nothing behavior under contention. The target environment
// must already contain the buyer, the seller and the product; ids and
// stock are taken from the environment.
const (
	defaultBaseURL  = "http://localhost:8080"
	defaultBuyerID  = 1
	defaultSellerID = 2
	defaultProduct  = 1
	totalOrders     = 50
)

func main() {
	baseURL := getenv("BASE_URL", defaultBaseURL)
	buyerID := getenvInt("BUYER_ID", defaultBuyerID)
	sellerID := getenvInt("SELLER_ID", defaultSellerID)
	productID := getenvInt("PRODUCT_ID", defaultProduct)

	client := &http.Client{Timeout: 5 * time.Second}

	// Phase 1: place orders concurrently.
	orderIDs := make([]int64, totalOrders)
	var placed atomic.Int32
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalOrders; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id, err := placeOrder(client, baseURL, buyerID, sellerID, productID)
			if err != nil {
				log.Printf("place %d: %v", n, err)
				return
			}
			orderIDs[n] = id
			placed.Add(1)
		}(i)
	}
	wg.Wait()
	log.Printf("placed %d/%d orders in %v", placed.Load(), totalOrders, time.Since(start))

	// Phase 2: accept them all concurrently. Combined demand should
	// exceed the seller's stock, so only part of them can win.
	var accepted, conflicts, failures atomic.Int32
	start = time.Now()

	for _, orderID := range orderIDs {
		if orderID == 0 {
			continue
		}
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			status, err := acceptOrder(client, baseURL, id)
			switch {
			case err != nil:
				failures.Add(1)
				log.Printf("accept %d: %v", id, err)
			case status == http.StatusOK:
				accepted.Add(1)
			case status == http.StatusConflict:
				conflicts.Add(1)
			default:
				failures.Add(1)
				log.Printf("accept %d: unexpected status %d", id, status)
			}
		}(orderID)
	}
	wg.Wait()

	log.Printf("accepted=%d conflicts=%d failures=%d in %v",
		accepted.Load(), conflicts.Load(), failures.Load(), time.Since(start))
}

func placeOrder(client *http.Client, baseURL string, buyerID, sellerID, productID int64) (int64, error) {
	body, _ := json.Marshal(map[string]any{
		"requestId": uuid.NewString(),
		"userId":    buyerID,
		"sellerId":  sellerID,
		"productId": []int64{productID},
		"quantity":  []int{1},
		"price":     10,
	})
	resp, err := client.Post(baseURL+"/api/user/order/place", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("status %d", resp.StatusCode)
	}
	var out struct {
		OrderID int64 `json:"orderId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.OrderID, nil
}

func acceptOrder(client *http.Client, baseURL string, orderID int64) (int, error) {
	req, err := http.NewRequest(http.MethodPut,
		fmt.Sprintf("%s/api/seller/order/accept/%d", baseURL, orderID), nil)
	if err != nil {
		return 0, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}
