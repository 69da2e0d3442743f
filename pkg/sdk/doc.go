// Package mathdex provides a Go client for the mathdex question pipeline API.
//
//	client := mathdex.New("http://localhost:8000", mathdex.WithAPIKey("secret"))
//	v, _ := client.Validate(ctx, "What is the derivative of x^2?")
//	if v.IsValid {
//	    r, _ := client.Refine(ctx, "What is the derivative of x^2?")
//	    sim, _ := client.Similarity(ctx, r.RefinedQuestion, nil)
//	    _ = sim.SimilarQuestions
//	}
package mathdex
