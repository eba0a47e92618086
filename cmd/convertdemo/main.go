package main

// One-shot conversion from the command line, mostly for template and prompt
// iteration:
//   go run ./cmd/convertdemo -file resume.pdf -name "Tan Ah Kow" -nationality Singaporean \
//     -gender Male -salary "$4,200" -notice "2 weeks" -out ./out
import (
	"context"
	"flag"
	"io"
	"log"
	"mime"
	"os"
	"path/filepath"

	"resume-converter/internal/bootstrap"
	"resume-converter/internal/conversions"
	"resume-converter/internal/shared/config"
	"resume-converter/resume/model"
)

func main() {
	var (
		filePath    = flag.String("file", "", "resume file to convert (pdf, docx, or image)")
		name        = flag.String("name", "", "candidate name")
		nationality = flag.String("nationality", "", "candidate nationality")
		gender      = flag.String("gender", "", "candidate gender")
		salary      = flag.String("salary", "", "expected salary")
		notice      = flag.String("notice", "", "notice period")
		preparedBy  = flag.String("prepared-by", "", "consultant name (optional)")
		outDir      = flag.String("out", ".", "directory to write the generated document into")
	)
	flag.Parse()

	if *filePath == "" {
		log.Fatal("-file is required")
	}

	data, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read %s: %v", *filePath, err)
	}

	app, err := bootstrap.Build(config.Load())
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	rec, err := app.ConversionsService.Convert(context.Background(), conversions.ConvertInput{
		Info: model.CandidateInfo{
			CandidateName:  *name,
			Nationality:    *nationality,
			Gender:         *gender,
			ExpectedSalary: *salary,
			NoticePeriod:   *notice,
			PreparedBy:     *preparedBy,
		},
		Data:     data,
		FileName: filepath.Base(*filePath),
		MimeType: mime.TypeByExtension(filepath.Ext(*filePath)),
	})
	if err != nil {
		log.Fatalf("conversion failed (%s): %v", conversions.ErrorCode(err), err)
	}

	rc, _, err := app.ConversionsService.Download(context.Background(), rec.ID)
	if err != nil {
		log.Fatalf("open output: %v", err)
	}
	defer rc.Close()

	outPath := filepath.Join(*outDir, rec.OutputFileName)
	out, err := os.Create(outPath)
	if err != nil {
		log.Fatalf("create %s: %v", outPath, err)
	}
	defer out.Close()
	if _, err := io.Copy(out, rc); err != nil {
		log.Fatalf("write %s: %v", outPath, err)
	}

	log.Printf("wrote %s", outPath)
}
